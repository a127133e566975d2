package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"conduit/pkg/conduit"
	"conduit/pkg/config"
	"conduit/pkg/observability"
	"conduit/pkg/transport/tcpstack"
	"conduit/pkg/transport/vchan"
)

// run is the main entry point after CLI parsing.
func run(opts Options) int {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	zap.L().Info("conduit-echod started", zap.String("app", cfg.AppName))

	stack := tcpstack.New()
	defer stack.Close()
	cctx := conduit.Init(stack, conduit.WithChannel(vchan.New()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var tasks []*conduit.Task
	for _, lc := range cfg.Listen {
		ep, err := lc.Endpoint()
		if err != nil {
			zap.L().Error("bad listen endpoint", zap.Error(err))
			return 1
		}
		srv, err := cctx.ResolveServer(ep)
		if err != nil {
			zap.L().Error("resolve listen endpoint", zap.String("endpoint", ep.String()), zap.Error(err))
			return 1
		}
		task, err := cctx.Serve(ctx, srv, echo, conduit.ServeOptions{Workers: opts.Workers})
		if err != nil {
			zap.L().Error("serve", zap.String("server", srv.String()), zap.Error(err))
			return 1
		}
		zap.L().Info("serving echo", zap.String("server", srv.String()))
		tasks = append(tasks, task)
	}
	if len(tasks) == 0 {
		zap.L().Error("no listen endpoints configured")
		return 1
	}

	<-ctx.Done()
	zap.L().Info("shutting down")
	for _, t := range tasks {
		t.Stop()
		<-t.Done()
	}
	return 0
}

// echo copies every received chunk back to the peer until end of stream.
func echo(f *conduit.Flow) {
	defer f.Close()
	for {
		b, err := f.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				zap.L().Warn("read failed", zap.Error(err))
			}
			return
		}
		if err := f.Write(b); err != nil {
			zap.L().Warn("write failed", zap.Error(err))
			return
		}
	}
}
