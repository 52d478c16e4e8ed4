package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/config"
	"github.com/etnz/carteira/logger"
	"github.com/etnz/carteira/server"
	"github.com/etnz/carteira/sqlitestore"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type serveCmd struct {
	port int
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the HTTP API" }
func (*serveCmd) Usage() string {
	return `carteira serve [-port <port>]

  Serves the HTTP API for every investor. Settings are read from the
  environment or a .env file, see 'carteira topic server'.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "Listening port, overrides CARTEIRA_PORT")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.port != 0 {
		cfg.Port = c.port
	}
	if *ledgerDir != "" {
		cfg.DataDir = *ledgerDir
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.PrettyLog})

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("cannot open store")
		return subcommands.ExitFailure
	}
	defer closeStore()

	srv := server.New(server.Config{
		Addr:    cfg.Addr(),
		Log:     log,
		Service: carteira.NewService(store, log),
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// openStore opens the store selected by the configuration.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (carteira.Store, func() error, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := sqlitestore.Open(ctx, cfg.DatabasePath(), log)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.DatabasePath()).Msg("using sqlite store")
		return s, s.Close, nil
	default:
		log.Info().Str("dir", cfg.DataDir).Msg("using jsonl store")
		return carteira.NewFileStore(cfg.DataDir), func() error { return nil }, nil
	}
}
