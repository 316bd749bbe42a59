package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/alexbaden/triton/internal/config"
	"github.com/alexbaden/triton/internal/driver"
	"github.com/common-nighthawk/go-figure"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func serveCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve driver metrics and the current target over HTTP",
		Action: func(c *cli.Context) error {
			banner := figure.NewFigure("tritondrv", "", true)
			fmt.Fprintln(c.App.Writer, banner.String())

			app := fx.New(
				fx.Supply(e.cfg, e.log),
				fx.Provide(driver.NewManager, newServer),
				fx.Invoke(func(*http.Server) {}),
				fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
					return &fxevent.ZapLogger{Logger: log.Named("fx")}
				}),
			)

			startCtx, cancel := context.WithTimeout(c.Context, app.StartTimeout())
			defer cancel()
			if err := app.Start(startCtx); err != nil {
				return err
			}

			select {
			case <-app.Done():
			case <-c.Context.Done():
			}

			stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
			defer cancel()
			return app.Stop(stopCtx)
		},
	}
}

func newMux(m *driver.Manager, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/target", func(w http.ResponseWriter, r *http.Request) {
		target, err := m.PublishTarget()
		if err != nil {
			log.Warn("failed to read current target", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(target)
	})
	return mux
}

func newServer(lc fx.Lifecycle, cfg *config.Config, m *driver.Manager, log *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:    cfg.Metrics.ListenAddress,
		Handler: newMux(m, log),
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if _, err := m.PublishTarget(); err != nil {
				return err
			}
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("Starting server on", zap.String("address", ln.Addr().String()))
			go srv.Serve(ln)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
