package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/songbook/internal/server"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func (r *Runner) shellHandler() (http.Handler, error) {
	router, err := server.NewShellRouter(server.ShellOptions{
		Config:     r.config,
		HTTPClient: r.httpClient,
		Logger:     shared.WithLogger(r.logger, "server", "shell"),
		Now:        r.now,
	})
	if err != nil {
		return nil, err
	}
	return router, nil
}

func (r *Runner) remoteHandler() (http.Handler, error) {
	router, err := server.NewRemoteRouter(server.RemoteOptions{
		Container: r.config.Shell.RemoteName,
		Module:    r.config.Shell.RemoteModule,
		Logger:    shared.WithLogger(r.logger, "server", "remote"),
		Now:       r.now,
	})
	if err != nil {
		return nil, err
	}
	return router, nil
}

// maybeOpen opens the shell in a browser when --open is set. Failure is logged, not returned.
func (r *Runner) maybeOpen(cmd *cli.Command) {
	if !cmd.Bool("open") {
		return
	}
	url := r.config.Shell.URL()
	if err := r.openBrowser(url); err != nil {
		r.logger.Warn("could not open browser", "url", url, "error", err)
	}
}

// ServeShell runs the shell until interrupted.
func (r *Runner) ServeShell(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, err := r.shellHandler()
	if err != nil {
		return err
	}

	r.logger.Info("loading library module from remote", "url", r.config.Shell.RemoteURL)
	r.maybeOpen(cmd)
	return server.Serve(ctx, "shell", r.config.Shell.Addr(), handler, r.logger)
}

// ServeRemote runs the music library remote until interrupted.
func (r *Runner) ServeRemote(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, err := r.remoteHandler()
	if err != nil {
		return err
	}
	return server.Serve(ctx, "remote", r.config.Remote.Addr(), handler, r.logger)
}

// ServeAll runs the remote and the shell together. Either server failing stops both.
func (r *Runner) ServeAll(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	remote, err := r.remoteHandler()
	if err != nil {
		return err
	}
	shell, err := r.shellHandler()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(ctx, "remote", r.config.Remote.Addr(), remote, r.logger)
	})
	g.Go(func() error {
		return server.Serve(ctx, "shell", r.config.Shell.Addr(), shell, r.logger)
	})

	r.maybeOpen(cmd)
	return g.Wait()
}
