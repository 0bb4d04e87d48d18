package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/urfave/cli/v2"

	"github.com/soaringjerry/Align/internal/api"
	"github.com/soaringjerry/Align/internal/config"
	dbstore "github.com/soaringjerry/Align/internal/db"
	"github.com/soaringjerry/Align/internal/fixtures"
	"github.com/soaringjerry/Align/internal/metrics"
	"github.com/soaringjerry/Align/internal/middleware"
	"github.com/soaringjerry/Align/internal/services"
	"github.com/soaringjerry/Align/internal/utils"
)

func main() {
	app := &cli.App{
		Name:  "align",
		Usage: "compare how closely users answer ordinal survey questions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the YAML config file", EnvVars: []string{"ALIGN_CONFIG"}},
			&cli.StringFlag{Name: "fixtures", Usage: "YAML fixtures to load (overrides config)"},
			&cli.BoolFlag{Name: "sample", Usage: "load the bundled sample fixtures"},
		},
		Commands: []*cli.Command{
			{Name: "serve", Usage: "run the HTTP server", Action: serveAction},
			{
				Name:   "compare",
				Usage:  "print every pair comparison",
				Action: compareAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "text", Usage: "text, long (CSV) or totals (CSV)"},
				},
			},
			{Name: "migrate", Usage: "create and seed the SQLite database if it does not exist", Action: migrateAction},
		},
		Action: serveAction,
	}
	if err := app.Run(os.Args); err != nil {
		slog.Error("align failed", "err", err)
		os.Exit(1)
	}
}

type deps struct {
	cfg    *config.Config
	log    *slog.Logger
	store  api.Store
	closer io.Closer
}

func (rt *deps) Close() {
	if rt.closer != nil {
		if err := rt.closer.Close(); err != nil {
			rt.log.Warn("close store", "err", err)
		}
	}
}

func setup(c *cli.Context) (*deps, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if p := c.String("fixtures"); p != "" {
		cfg.FixturesPath = p
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	rt := &deps{cfg: cfg, log: logger}
	gen := services.NewUUIDGenerator()
	switch cfg.Storage {
	case config.StorageSQLite:
		if err := MigrateIfNeeded(cfg.FixturesPath, cfg.SQLitePath, cfg.MigrationsDir, gen, logger); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		st, err := dbstore.Open(cfg.SQLitePath, cfg.MigrationsDir, logger)
		if err != nil {
			return nil, err
		}
		rt.store, rt.closer = st, st
	default:
		st := api.NewMemoryStore()
		if cfg.FixturesPath != "" {
			if err := seedFromFile(st, cfg.FixturesPath, gen); err != nil {
				return nil, err
			}
		}
		rt.store = st
	}
	if c.Bool("sample") {
		if e, ok := rt.store.(interface{ IsEmpty() bool }); ok && !e.IsEmpty() {
			logger.Info("database already populated, skipping sample fixtures")
			return rt, nil
		}
		ds, err := fixtures.Sample().Resolve(gen, time.Now().UTC())
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("sample fixtures: %w", err)
		}
		ds.Apply(rt.store)
	}
	return rt, nil
}

func seedFromFile(sink fixtures.Sink, path string, gen services.IDGenerator) error {
	f, err := fixtures.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixtures: %w", err)
	}
	ds, err := f.Resolve(gen, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("fixtures %s: %w", path, err)
	}
	ds.Apply(sink)
	return nil
}

func newHandler(cfg *config.Config, store api.Store, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.Use(m.Instrument)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.NoStore)
	r.Use(middleware.LocaleMiddleware)

	api.NewRouter(store, m, logger).Register(r)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "Align API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"storage":    cfg.Storage,
			"commit":     cfg.Build.Commit,
			"build_time": cfg.Build.BuildTime,
		})
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     cfg.Build.Commit,
			"build_time": cfg.Build.BuildTime,
		})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	} else {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/comparisons", http.StatusFound)
		})
	}
	return r
}

func serveAction(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	srv := &http.Server{
		Addr:              rt.cfg.Addr,
		Handler:           newHandler(rt.cfg, rt.store, metrics.New(), rt.log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info("align server listening", "addr", rt.cfg.Addr, "storage", rt.cfg.Storage)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	rt.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func compareAction(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()
	pcs, err := api.NewComparisonService(rt.store).Compare()
	if err != nil {
		return err
	}
	var export func([]services.PairComparison) ([]byte, error)
	switch f := c.String("format"); f {
	case "text":
		return writeReport(c.App.Writer, pcs)
	case "long":
		export = services.ExportLongCSV
	case "totals":
		export = services.ExportTotalsCSV
	default:
		return fmt.Errorf("unknown format %q", f)
	}
	b, err := export(pcs)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(b)
	return err
}

func migrateAction(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if p := c.String("fixtures"); p != "" {
		cfg.FixturesPath = p
	}
	return MigrateIfNeeded(cfg.FixturesPath, cfg.SQLitePath, cfg.MigrationsDir, services.NewUUIDGenerator(), cfg.Logger(os.Stderr))
}
