// Copyright (C) 2026 TinyFedi Project
//
// This file is part of fedcore.
//
// fedcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// fedcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with fedcore.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/server"
)

func serveCmd() *cobra.Command {
	var drainInterval time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the federation server",
		Long: `Serve the federation endpoints and drain the inbox queue
periodically. Inbound activities are verified, persisted, and queued on
receipt; the periodic drain dispatches them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(verbose)
			defer logger.Sync()

			a, err := newApp(logger)
			if err != nil {
				return err
			}

			e := echo.New()
			e.HideBanner = true
			e.Use(middleware.Recover())

			srv := server.New(a.cfg, a.store, a.followers, a.queue,
				a.verifier, a.publicKeyPEM, logger)
			srv.Register(e)

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				ticker := time.NewTicker(drainInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if _, err := a.queue.Drain(ctx, a.registry); err != nil {
							logger.Error("queue drain failed", zap.Error(err))
						}
					}
				}
			}()

			go func() {
				logger.Info("federation server listening",
					zap.String("listen", a.cfg.Server.Listen),
					zap.String("actor", a.cfg.ActorID()))
				if err := e.Start(a.cfg.Server.Listen); err != nil && err != http.ErrServerClosed {
					logger.Fatal("server failed", zap.Error(err))
				}
			}()

			<-ctx.Done()
			logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().DurationVar(&drainInterval, "drain-interval", 30*time.Second,
		"how often the inbox queue is drained")
	return cmd
}
