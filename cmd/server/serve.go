package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/devmarkblog/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the blog HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	gin.SetMode(rt.cfg.GinMode)

	created, err := db.EnsureUser(rt.db, rt.cfg.AdminUsername, rt.cfg.AdminPassword)
	if err != nil {
		return eris.Wrap(err, "ensuring admin user")
	}
	if created {
		rt.logger.WithField("username", rt.cfg.AdminUsername).Info("created local admin user")
	}

	authenticator, err := newAuthenticator(rt.cfg, rt.db)
	if err != nil {
		return eris.Wrap(err, "initialising authenticator")
	}

	httpServer := &http.Server{
		Addr:    rt.cfg.ListenAddr,
		Handler: newEngine(rt.cfg, rt.logger, rt.db, authenticator),
	}

	rt.logger.WithFields(logrus.Fields{
		"addr":        httpServer.Addr,
		"hosted_auth": rt.cfg.HostedAuthEnabled(),
		"postgres":    rt.cfg.DatabaseURL != "",
	}).Info("starting http server")

	serverErrCh := make(chan error, 1)
	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		rt.logger.Info("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			return eris.Wrap(err, "http server error")
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "shutting down http server")
	}

	rt.logger.Info("http server shut down cleanly")
	return nil
}
