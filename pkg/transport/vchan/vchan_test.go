package vchan

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conduit/pkg/transport"
)

func openPair(t *testing.T, tr *Transport, domain uint32, port transport.ChannelPort, hint transport.BufferHint) (srv, cli transport.ChannelConn) {
	t.Helper()
	var wg sync.WaitGroup
	var serr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		srv, serr = tr.OpenServer(context.Background(), domain, port, hint)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var cerr error
	for {
		cli, cerr = tr.OpenClient(ctx, domain, port)
		if cerr == nil {
			break
		}
		select {
		case <-ctx.Done():
			t.Fatalf("client open: %v", cerr)
		case <-time.After(2 * time.Millisecond):
		}
	}
	wg.Wait()
	require.NoError(t, serr)
	return srv, cli
}

func TestParsePort(t *testing.T) {
	tr := New()
	for _, ok := range []string{"console", "db_0", "a-b-c", "X9"} {
		p, err := tr.ParsePort(ok)
		require.NoError(t, err, ok)
		assert.Equal(t, transport.ChannelPort(ok), p)
	}
	for _, bad := range []string{"", "with space", "semi;colon", "sl/ash", "dot.dot", "ünicode"} {
		_, err := tr.ParsePort(bad)
		require.Error(t, err, bad)
		assert.Contains(t, err.Error(), "invalid vchan port")
	}
}

func TestRoundTrip(t *testing.T) {
	tr := New()
	srv, cli := openPair(t, tr, 1, "rt", transport.BufferHint{})
	defer srv.Close()
	defer cli.Close()

	require.NoError(t, cli.Write([]byte("hello ")))
	require.NoError(t, cli.Writev([][]byte{[]byte("vchan"), []byte(" world")}))

	want := "hello vchan world"
	var got []byte
	for len(got) < len(want) {
		b, err := srv.Read()
		require.NoError(t, err)
		got = append(got, b...)
	}
	assert.Equal(t, want, string(got))
}

func TestCloseSignalsPeerAfterDrain(t *testing.T) {
	tr := New()
	srv, cli := openPair(t, tr, 1, "drain", transport.BufferHint{})
	defer srv.Close()

	require.NoError(t, cli.Write([]byte("last")))
	cli.Close()

	b, err := srv.Read()
	require.NoError(t, err, "queued data must stay readable after peer close")
	assert.Equal(t, "last", string(b))

	_, err = srv.Read()
	assert.ErrorIs(t, err, io.EOF)

	// writes towards the closed peer fail with an opaque error
	err = srv.Write([]byte("too late"))
	require.Error(t, err)
	assert.False(t, transport.IsRefused(err))
	assert.False(t, transport.IsTimeout(err))
}

func TestCloseIsIdempotent(t *testing.T) {
	tr := New()
	srv, cli := openPair(t, tr, 1, "twice", transport.BufferHint{})
	defer srv.Close()

	cli.Close()
	cli.Close() // second close must not double-release or panic

	_, err := srv.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpenClientWithoutServer(t *testing.T) {
	tr := New()
	_, err := tr.OpenClient(context.Background(), 3, "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no server listening")
}

func TestOpenServerDuplicate(t *testing.T) {
	tr := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = tr.OpenServer(ctx, 2, "dup", transport.BufferHint{})
	}()

	// wait for the first registration to land
	deadline := time.Now().Add(2 * time.Second)
	for !tr.listeners.Has(connKey(2, "dup")) {
		if time.Now().After(deadline) {
			t.Fatal("first server never registered")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := tr.OpenServer(context.Background(), 2, "dup", transport.BufferHint{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has a server")

	cancel()
	<-done
}

func TestOpenServerHonorsContext(t *testing.T) {
	tr := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := tr.OpenServer(ctx, 4, "never", transport.BufferHint{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWriteBlocksUntilReaderDrains(t *testing.T) {
	tr := New()
	srv, cli := openPair(t, tr, 5, "tiny", transport.BufferHint{ReadBytes: 8, WriteBytes: 8})
	defer srv.Close()
	defer cli.Close()

	payload := make([]byte, 64)
	for i := range payload {
		payload[i] = byte(i)
	}

	wrote := make(chan error, 1)
	go func() { wrote <- cli.Write(payload) }()

	select {
	case err := <-wrote:
		t.Fatalf("64-byte write into an 8-byte ring returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	var got []byte
	for len(got) < len(payload) {
		b, err := srv.Read()
		require.NoError(t, err)
		got = append(got, b...)
	}
	require.NoError(t, <-wrote)
	assert.Equal(t, payload, got)
}

func TestCloseUnblocksPendingWrite(t *testing.T) {
	tr := New()
	srv, cli := openPair(t, tr, 6, "stuck", transport.BufferHint{ReadBytes: 4, WriteBytes: 4})
	defer srv.Close()

	wrote := make(chan error, 1)
	go func() { wrote <- cli.Write(make([]byte, 1024)) }()

	time.Sleep(20 * time.Millisecond)
	cli.Close()

	select {
	case err := <-wrote:
		require.Error(t, err)
		assert.True(t, errors.Is(err, errClosed))
	case <-time.After(2 * time.Second):
		t.Fatal("close did not unblock the writer")
	}
}
