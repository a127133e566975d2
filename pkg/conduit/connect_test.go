package conduit

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"testing"

	"conduit/pkg/transport"
)

func TestConnectChannelIgnoresStack(t *testing.T) {
	ch := &fakeChannel{}

	// no stack bound at all
	f, err := Default(WithChannel(ch)).Connect(context.Background(), ChannelClient(2, "db"))
	if err != nil {
		t.Fatalf("connect without stack: %v", err)
	}
	if f.Kind() != transport.KindChannel {
		t.Fatalf("expected channel flow, got %v", f.Kind())
	}

	// stack bound but must stay untouched
	stack := newFakeStack()
	if _, err := Init(stack, WithChannel(ch)).Connect(context.Background(), ChannelClient(2, "db")); err != nil {
		t.Fatalf("connect with stack: %v", err)
	}
	if stack.dialCount() != 0 {
		t.Fatalf("channel connect touched the stack: %d dials", stack.dialCount())
	}
	if ch.clientOpens != 2 {
		t.Fatalf("expected 2 channel opens, got %d", ch.clientOpens)
	}
}

func TestConnectChannelWithoutTransport(t *testing.T) {
	_, err := Default().Connect(context.Background(), ChannelClient(2, "db"))
	if !IsConfiguration(err) || !strings.Contains(err.Error(), "channel transport not available") {
		t.Fatalf("expected unavailable configuration error, got %v", err)
	}
}

func TestConnectStreamNoStackBound(t *testing.T) {
	_, err := Default().Connect(context.Background(), StreamClient(netip.MustParseAddr("192.0.2.1"), 80))
	if !IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "no stack bound") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestConnectStreamUnsupportedFamily(t *testing.T) {
	stack := newFakeStack()
	c := Init(stack)

	for _, addr := range []netip.Addr{netip.MustParseAddr("2001:db8::1"), {}} {
		_, err := c.Connect(context.Background(), StreamClient(addr, 80))
		if !IsConfiguration(err) || !strings.Contains(err.Error(), "unsupported address family") {
			t.Fatalf("addr %v: expected family error, got %v", addr, err)
		}
	}
	if stack.dialCount() != 0 {
		t.Fatalf("family check must run before any I/O, saw %d dials", stack.dialCount())
	}
}

func TestConnectStreamFamilyCheckBeforeStackCheck(t *testing.T) {
	// even with no stack, a bad family is reported as the family problem
	_, err := Default().Connect(context.Background(), StreamClient(netip.MustParseAddr("::1"), 80))
	if err == nil || !strings.Contains(err.Error(), "unsupported address family") {
		t.Fatalf("expected family error, got %v", err)
	}
}

func TestConnectStreamSuccess(t *testing.T) {
	stack := newFakeStack()
	f, err := Init(stack).Connect(context.Background(), StreamClient(netip.MustParseAddr("127.0.0.1"), 4242))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if f.Kind() != transport.KindStream {
		t.Fatalf("expected stream flow, got %v", f.Kind())
	}
	if stack.dialCount() != 1 {
		t.Fatalf("expected one dial, got %d", stack.dialCount())
	}
}

func TestConnectStreamMappedV4Allowed(t *testing.T) {
	stack := newFakeStack()
	if _, err := Init(stack).Connect(context.Background(), StreamClient(netip.MustParseAddr("::ffff:192.0.2.1"), 80)); err != nil {
		t.Fatalf("4-in-6 connect: %v", err)
	}
}

func TestConnectStreamThreadsNativeError(t *testing.T) {
	stack := newFakeStack()
	stack.dialErr = fmt.Errorf("%w: dial tcp 192.0.2.9:81: connect: connection refused", transport.ErrRefused)

	_, err := Init(stack).Connect(context.Background(), StreamClient(netip.MustParseAddr("192.0.2.9"), 81))
	if err == nil {
		t.Fatal("expected error")
	}
	if !transport.IsRefused(err) {
		t.Fatalf("native refusal must stay reachable, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("native detail lost: %v", err)
	}
	if IsConfiguration(err) {
		t.Fatalf("transport failure misclassified as configuration: %v", err)
	}
}
