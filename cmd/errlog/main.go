package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bft-labs/errlog/internal/cliconfig"
)

func main() {
	log := cliconfig.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("errlog")
		stop()
		os.Exit(1)
	}
}
