package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"forum/internal/config"
	"forum/internal/httpx"
	"forum/internal/logging"
	"forum/internal/render"
	"forum/internal/static"
	"forum/internal/store"
)

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the forum HTTP server",
		Long: `Start the forum HTTP server.

The store is not contacted until the first request that needs it, so the
server starts even while the database is down.`,
		RunE: c.runServe,
	}
	cmd.Flags().String("addr", ":3000", "HTTP listen address")
	cmd.Flags().String("store", "mongo", "post store: mongo, postgres, sqlite or memory")
	cmd.Flags().String("store-uri", "mongodb://127.0.0.1:27017", "Mongo URI, Postgres DSN or SQLite file")

	c.bindFlags(cmd.Flags(), map[string]string{
		"server.addr":  "addr",
		"store.driver": "store",
		"store.uri":    "store-uri",
	})
	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v)
	if err != nil {
		return err
	}
	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stdout})

	posts, err := store.Open(cfg.Store, log)
	if err != nil {
		return err
	}
	osFs := afero.NewOsFs()
	srv := httpx.NewServer(
		httpx.Config{StaticPrefix: cfg.Static.Prefix},
		posts,
		render.NewRenderer(osFs, cfg.Templates.Dir, cfg.Templates.Ext),
		static.New(osFs, cfg.Static.Root, log),
		log,
	)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "server listening", "addr", cfg.Server.Addr, "store", cfg.Store.Driver)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if cerr := posts.Close(closeCtx); cerr != nil {
		log.Error(closeCtx, cerr, "closing store")
	}
	return err
}
