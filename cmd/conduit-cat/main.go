package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/netip"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"conduit/pkg/conduit"
	"conduit/pkg/endpoint"
	"conduit/pkg/transport/tcpstack"
	"conduit/pkg/transport/vchan"
)

func main() {
	kind := flag.String("kind", "tcp", "endpoint kind: tcp|vchan")
	addr := flag.String("addr", "127.0.0.1", "address to connect to (tcp)")
	port := flag.Uint("port", 8080, "port to connect to (tcp)")
	domain := flag.Uint("domain", 0, "isolation domain id (vchan)")
	vchanPort := flag.String("vchan-port", "", "channel port identifier (vchan)")
	timeout := flag.Duration("timeout", 30*time.Second, "total connect budget across retries")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ep endpoint.Endpoint
	switch *kind {
	case "tcp":
		a, err := netip.ParseAddr(*addr)
		if err != nil {
			fatalf("parse addr: %v", err)
		}
		ep = endpoint.Stream(a, uint16(*port))
	case "vchan":
		ep = endpoint.Channel(uint32(*domain), *vchanPort)
	default:
		ep = endpoint.Unknown(fmt.Sprintf("unrecognized endpoint kind %q", *kind))
	}

	cctx := conduit.Init(tcpstack.New(), conduit.WithChannel(vchan.New()))
	cli, err := cctx.ResolveClient(ep)
	if err != nil {
		fatalf("resolve: %v", err)
	}

	// The layer never retries; retry here, giving up at once on
	// configuration errors.
	var f *conduit.Flow
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = *timeout
	err = backoff.Retry(func() error {
		var cerr error
		f, cerr = cctx.Connect(ctx, cli)
		if cerr != nil && conduit.IsConfiguration(cerr) {
			return backoff.Permanent(cerr)
		}
		return cerr
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		fatalf("connect %s: %v", cli, err)
	}
	defer f.Close()
	zap.L().Info("connected", zap.String("client", cli.String()))

	go func() {
		buf := make([]byte, 4096)
		for {
			n, rerr := os.Stdin.Read(buf)
			if n > 0 {
				if werr := f.Write(buf[:n]); werr != nil {
					zap.L().Warn("write failed", zap.Error(werr))
					cancel()
					return
				}
			}
			if rerr != nil {
				cancel()
				return
			}
		}
	}()

	for {
		b, rerr := f.Read()
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) {
				fatalf("read: %v", rerr)
			}
			return
		}
		if _, werr := os.Stdout.Write(b); werr != nil {
			fatalf("stdout: %v", werr)
		}
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
