package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "furryville_index/internal/adapters/http_server"
	"furryville_index/internal/adapters/observability"
	"furryville_index/internal/app"
	"furryville_index/internal/shared"
	mysqlrepo "furryville_index/internal/storage/mysql"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	// db: opening is lazy; an unreachable store is a per-request 500, not a startup failure
	db, err := sqlx.Open("mysql", cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Warn().Err(err).Msg("database not reachable at startup")
	} else {
		log.Info().Msg("database connection ok")
	}

	// deps
	dir := app.NewDirectory(mysqlrepo.New(db), cfg.MallSchema)
	pages, err := server.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("templates failed to parse")
	}

	// http
	srv := server.New(cfg.HTTPTimeout)
	srv.MountRoutes(&server.Handlers{D: dir, Pages: pages, WarpHallStallPages: cfg.WarpHallStallPages})
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	metricsSrv := observability.NewMetricsServer(cfg.MetricsAddr, observability.InitRegistry())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).
			Bool("warp_hall_stall_pages", cfg.WarpHallStallPages).
			Str("mall_schema", cfg.MallSchema.String()).
			Msg("API listening")
		return listen(httpSrv)
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
		return listen(metricsSrv)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Join(httpSrv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("shutdown complete")
}

func listen(s *http.Server) error {
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
