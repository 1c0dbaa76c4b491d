package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/CourierDesk/config"
	"github.com/BearBump/CourierDesk/internal/storage/pgconsole"
)

type consoleApp struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	opts   httpOpts
	f      consoleFactories
}

func mustBootstrapConsoleAPI() *consoleApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	f := defaultConsoleFactories()
	f.newStorage = func(cfg *config.Config) (consoleStore, func(), error) {
		st := mustOpenPostgresWithRetry(cfg.PostgresConnString(), 60*time.Second)
		return st, st.Close, nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return &consoleApp{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		opts: httpOpts{
			httpAddr:    cfg.ConsoleSettings().HTTPAddr,
			swaggerPath: os.Getenv("swaggerPath"),
		},
		f: f,
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgconsole.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgconsole.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *consoleApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *consoleApp) Run() error {
	return RunConsoleAPI(a.ctx, a.cfg, a.opts, a.f)
}
