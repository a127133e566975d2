// Package conduit unifies a stream (TCP-style) transport and an
// inter-domain channel transport behind one connection handle.
//
// Key concepts:
// - Flow: tagged bidirectional handle over either transport with one
//   read/write/writev/close contract and a normalized error vocabulary
// - Context: process-scoped binding of an optional stream stack and an
//   optional channel transport capability
// - Client/Server: fully-typed connection descriptors produced by
//   resolving a transport-neutral endpoint
// - Connect/Serve: active and passive open orchestration; handler code
//   only ever sees a Flow, never a concrete transport
//
// The layer adds no retries, no deadlines beyond the advisory serve
// timeout, and no recovery: every failure surfaces to the caller.
package conduit
