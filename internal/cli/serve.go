package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pschleger/workflow-canvas/internal/api"
	"github.com/pschleger/workflow-canvas/internal/config"
	"github.com/pschleger/workflow-canvas/pkg/layout"
	"github.com/pschleger/workflow-canvas/pkg/store"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workflow editing API",
		Long: `Serve starts the HTTP API the canvas UI edits through. Every structural
operation (states, transitions, undo/redo, auto-layout) is exposed as a
JSON endpoint backed by the configured persistence backend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := api.New(api.Options{
				Store:        st,
				HistoryLimit: cfg.History.Limit,
				Logger:       logger,
				Layout: layout.Options{
					NodeWidth:      cfg.Layout.NodeWidth,
					NodeHeight:     cfg.Layout.NodeHeight,
					NodeSeparation: cfg.Layout.NodeSeparation,
					RankSeparation: cfg.Layout.RankSeparation,
					Direction:      layout.Direction(cfg.Layout.Direction),
				},
			})
			defer srv.Close()

			httpServer := &http.Server{
				Addr:    cfg.Server.Addr,
				Handler: srv.Router(),
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.Server.Addr, "backend", cfg.Store.Backend)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/flowcanvas/config.toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

// openStore builds the persistence backend the config selects.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "file":
		dir := cfg.Store.File.Dir
		if dir == "" {
			dir = config.DataDir()
		}
		return store.NewFileStore(dir)
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Store.Mongo.URI,
			Database:   cfg.Store.Mongo.Database,
			Collection: cfg.Store.Mongo.Collection,
		})
	case "redis":
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			TTL:      cfg.Store.Redis.TTL.Duration(),
		})
	default:
		return store.NewMemoryStore(), nil
	}
}
