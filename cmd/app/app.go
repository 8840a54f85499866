package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localmarkets/marketplace/internal/api"
	"github.com/localmarkets/marketplace/internal/config"
	"github.com/localmarkets/marketplace/internal/db"
	"github.com/localmarkets/marketplace/internal/logger"
	"github.com/localmarkets/marketplace/internal/marketday"
	"github.com/localmarkets/marketplace/internal/media"
	"github.com/localmarkets/marketplace/internal/repository"
	"github.com/localmarkets/marketplace/internal/repository/dao"
	"github.com/localmarkets/marketplace/internal/service"
)

const shutdownTimeout = 15 * time.Second

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	postgresDB, err := OpenDatabase(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(postgresDB); err != nil {
		return fmt.Errorf("failed to migrate tables -> %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := media.NewStore(ctx, conf.Media)
	if err != nil {
		return fmt.Errorf("failed to initialize media store -> %w", err)
	}

	loc, err := conf.Schedule.Location()
	if err != nil {
		return fmt.Errorf("failed to load schedule timezone -> %w", err)
	}
	calc := marketday.NewCalculator(loc)

	job := service.NewMarketDayJob(repository.NewMarketRepository(dao.NewMarketDAO(postgresDB)), calc)
	if err = job.Start(conf.Schedule.RollCron); err != nil {
		return fmt.Errorf("failed to schedule market day roll -> %w", err)
	}
	defer job.Stop()

	s, err := api.NewServer(conf, postgresDB, store, calc)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}
	defer s.Shutdown()

	srv := &http.Server{
		Addr:              ":" + s.Config.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
		zap.L().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}

// OpenDatabase prefers DATABASE_URL, as handed out by most hosting
// platforms, over the postgres block of the config file.
func OpenDatabase(conf *config.AppConfig) (*gorm.DB, error) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return db.OpenPostgresWithURL(dbURL)
	}

	return db.OpenPostgres(conf.Postgres)
}
