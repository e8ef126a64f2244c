package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lifemap/internal/api"
	"github.com/sells-group/lifemap/internal/session"
	"github.com/sells-group/lifemap/internal/views"
)

var (
	servePort      int
	serveFromStore bool
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts := api.Options{CORSOrigins: cfg.Server.CORSOrigins}

		ds, err := loadDataset(ctx, cfg, serveFromStore)
		if err != nil {
			// Keep serving so clients see the load error instead of a dead port.
			zap.L().Error("dataset unavailable, serving load error", zap.Error(err))
			opts.LoadErr = err
		} else {
			if err := checkDefaultField(cfg, ds); err != nil {
				return err
			}
			data := views.NewData(ds)
			ttl := time.Duration(cfg.Server.SessionTTLMins) * time.Minute
			reg := session.NewRegistry(data, sessionDefaults(cfg), ttl)
			opts.Data, opts.Registry = data, reg
			go sweepSessions(ctx, reg, ttl)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.NewServer(opts),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.Bool("data_loaded", opts.Data != nil))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// sweepSessions expires idle sessions until ctx is done. It checks at a
// quarter of the ttl, and never when ttl is zero.
func sweepSessions(ctx context.Context, reg *session.Registry, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(max(ttl/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := reg.Sweep(); n > 0 {
				zap.L().Debug("expired sessions", zap.Int("count", n))
			}
		}
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveFromStore, "from-store", false, "read the dataset snapshot from the store instead of the source documents")
	rootCmd.AddCommand(serveCmd)
}
