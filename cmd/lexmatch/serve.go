package lexmatch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexmatch/lexmatch/internal/registry"
	"github.com/lexmatch/lexmatch/internal/server"
)

var (
	serveListen  string
	serveSets    string
	serveWatch   bool
	serveMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the lexmatch HTTP API",
	Long: `Serve exposes the searcher registry over HTTP: create, match,
subst, save, load and free by handle. --sets preloads a directory of
keyword set files; --watch keeps them fresh as the files change.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		fileCfg := loadFileConfig()
		listen := pickString(serveListen, fileCfg.Listen, ":8080")
		setsDir := pickString(serveSets, fileCfg.SetsDir, "")
		withMetrics := pickBool(serveMetrics, fileCfg.Metrics)

		store := registry.NewStore(logger)

		var sets *server.SetIndex
		if setsDir != "" {
			sets = server.NewSetIndex(store, logger)
			if err := sets.LoadDir(setsDir); err != nil {
				return err
			}
		}

		var metrics *server.Metrics
		if withMetrics {
			metrics = server.NewMetrics(func() float64 { return float64(store.Len()) })
		}

		mux := http.NewServeMux()
		handler := server.NewHandler(store, sets, metrics, logger)
		handler.RegisterRoutes(mux)

		srv := &http.Server{
			Addr:              listen,
			Handler:           server.WithRequestLog(logger, mux),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if sets != nil && serveWatch {
			go func() {
				if err := sets.Watch(ctx, setsDir); err != nil {
					logger.Error("set watcher stopped", "error", err)
				}
			}()
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", listen, "metrics", withMetrics, "sets", setsDir)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveSets, "sets", "", "directory of keyword set files to preload")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload keyword sets when their files change")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", false, "expose Prometheus metrics on /metrics")
	rootCmd.AddCommand(serveCmd)
}
