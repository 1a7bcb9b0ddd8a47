package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rhinoxpay/rhinoxcore/api"
	"github.com/rhinoxpay/rhinoxcore/config"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/drivers/postgres"
	"github.com/rhinoxpay/rhinoxcore/database/drivers/sqlite3"
	"github.com/rhinoxpay/rhinoxcore/engine"
	"github.com/rhinoxpay/rhinoxcore/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	var (
		configPath string
		dataPath   string
	)
	flag.StringVar(&configPath, "config", "", "path to the configuration file")
	flag.StringVar(&dataPath, "datadir", ".", "directory holding the sqlite database file")
	flag.Parse()

	if err := run(configPath, dataPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, dataPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := log.Configure(cfg.Logging.Level, cfg.Logging.JSON); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer func() {
		if err := log.CloseLogger(); err != nil {
			fmt.Fprintf(os.Stderr, "log flush: %v\n", err)
		}
	}()

	dbCfg := cfg.DatabaseConfig()
	var instance *database.Instance
	switch dbCfg.Driver {
	case database.DBPostgres:
		instance, err = postgres.Connect(dbCfg)
	case database.DBSQLite3:
		instance, err = sqlite3.Connect(dbCfg, dataPath)
	default:
		err = fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
	}
	if err != nil {
		return fmt.Errorf("database connect: %w", err)
	}
	defer func() {
		if err := instance.CloseConnection(); err != nil {
			log.Errorf(log.Global, "database close: %v", err)
		}
	}()
	if err := instance.Setup(context.Background()); err != nil {
		return fmt.Errorf("database setup: %w", err)
	}

	e, err := engine.New(cfg, instance)
	if err != nil {
		return err
	}
	if err := e.Start(); err != nil {
		return fmt.Errorf("engine start: %w", err)
	}

	server := api.NewServer(e, cfg)
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve() }()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-interrupt:
		log.Infof(log.Global, "captured %v, shutting down", sig)
	case err := <-serveErr:
		if err != nil {
			log.Errorf(log.Global, "REST server: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf(log.Global, "REST server shutdown: %v", err)
	}
	if err := e.Stop(); err != nil {
		log.Errorf(log.Global, "engine stop: %v", err)
	}
	return nil
}
