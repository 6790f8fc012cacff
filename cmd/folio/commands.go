package main

import (
	"context"

	"github.com/newthinker/folio/internal/logger"
	"github.com/newthinker/folio/internal/output"
	"github.com/newthinker/folio/internal/secrets"
	"github.com/spf13/cobra"
)

// keyStore returns the credential store; tests replace it.
var keyStore = func() secrets.Store {
	return secrets.NewEnvStore(secrets.NewSystemStore())
}

// openRuntime builds a quiet runtime for one-shot commands.
func openRuntime(ctx context.Context, tickers ...string) (*runtime, error) {
	log, err := logger.NewQuiet(debug)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(log)
	if err != nil {
		return nil, err
	}
	return newRuntime(ctx, cfg, keyStore(), log, tickers...)
}

func formatter(cmd *cobra.Command) (*output.Formatter, error) {
	return output.New(cmd.OutOrStdout(), outputFormat)
}
