// Command seed loads markets, vendors and products from a YAML file. Markets
// are matched by name and vendors by phone, so it is safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.
	"go.uber.org/zap"

	"github.com/localmarkets/marketplace/cmd/app"
	"github.com/localmarkets/marketplace/internal/config"
	"github.com/localmarkets/marketplace/internal/logger"
	"github.com/localmarkets/marketplace/internal/repository"
	"github.com/localmarkets/marketplace/internal/repository/dao"
	"github.com/localmarkets/marketplace/internal/service"
)

func main() {
	file := flag.String("file", "seed.yml", "path to the seed file")
	configPath := flag.String("config", "./cmd/app/config.yml", "path to the app config")
	flag.Parse()

	if err := run(*file, *configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(file, configPath string) error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("os.Open -> %w", err)
	}
	defer f.Close()

	markets, err := parseSeedFile(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s -> %w", file, err)
	}

	db, err := app.OpenDatabase(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	if err = dao.InitTables(db); err != nil {
		return fmt.Errorf("failed to migrate tables -> %w", err)
	}

	seeder := service.NewSeeder(
		repository.NewMarketRepository(dao.NewMarketDAO(db)),
		repository.NewUserRepository(dao.NewUserDAO(db)),
		repository.NewVendorRepository(dao.NewVendorDAO(db)),
		repository.NewProductRepository(dao.NewProductDAO(db)),
	)

	report, err := seeder.Seed(context.Background(), markets)
	if err != nil {
		return err
	}

	zap.L().Info("seed complete",
		zap.Int("markets", report.Markets),
		zap.Int("vendors", report.Vendors),
		zap.Int("skippedVendors", report.SkippedVendors),
		zap.Int("products", report.Products),
	)

	return nil
}
