// Package transport defines the boundary contracts between the conduit
// layer and its two transport collaborators, plus basic implementations
// (tcpstack, vchan).
//
// Key concepts:
// - Stack: the stream (TCP-style) collaborator; dials and registers
//   persistent accept callbacks
// - Channel: the inter-domain channel collaborator; one passive open per
//   OpenServer call, no stack required
// - StreamConn/ChannelConn: native bidirectional byte handles with a
//   normalized error vocabulary (io.EOF, ErrRefused, ErrTimeout, opaque)
package transport
