package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/router"
	"github/chapool/wallet-bridge/internal/config"
)

const (
	shutdownTimeout = 30 * time.Second
)

// NewSubcommandGroup groups subcommands under name. Running the group itself
// prints its help.
func NewSubcommandGroup(name string, subCommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("%s related subcommands", name),
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}

	cmd.AddCommand(subCommands...)

	return cmd
}

// SetupLogger applies the logger config to the global zerolog instance.
func SetupLogger(config config.Server) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(config.Logger.Level)

	if config.Logger.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.TimeFormat = "15:04:05"
		}))
	}

	if config.Logger.LogCaller {
		log.Logger = log.With().Caller().Logger()
	}
}

// WithServer initializes a fully wired server, runs fn against it and shuts
// it down again. Used by subcommands needing the server's components without
// serving HTTP.
func WithServer(ctx context.Context, config config.Server, fn func(ctx context.Context, s *api.Server) error) error {
	SetupLogger(config)

	s, err := api.InitNewServer(config)
	if err != nil {
		return errors.Wrap(err, "failed to initialize server")
	}

	router.Init(s)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
			log.Error().Errs("errs", errs).Msg("Failed to shutdown server")
		}
	}()

	return fn(ctx, s)
}
