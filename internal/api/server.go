package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dropbox/godropbox/time2"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github/chapool/wallet-bridge/internal/config"
	"github/chapool/wallet-bridge/internal/metrics"
	"github/chapool/wallet-bridge/internal/util"
	"github/chapool/wallet-bridge/internal/wallet/confirm"
	"github/chapool/wallet-bridge/internal/wallet/connection"
	"github/chapool/wallet-bridge/internal/wallet/invoke"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
	"github/chapool/wallet-bridge/internal/wallet/signer"
)

// ConnectionService holds the connected signer identity.
type ConnectionService = connection.Service

// SignerService hands transactions to the wallet.
type SignerService = signer.Service

// ConfirmService polls the ledger for a submission.
type ConfirmService = confirm.Service

// InvokeService drives signing flows.
type InvokeService = invoke.Service

type Router struct {
	Routes      []*echo.Route
	Root        *echo.Group
	Management  *echo.Group
	APIV1Wallet *echo.Group
	APIV1Bridge *echo.Group
	APIV1Sign   *echo.Group
	APIV1Ledger *echo.Group
}

// Server is a central struct keeping all the dependencies.
// It is initialized with wire, which handles making the new instances of the components
// in the right order. To add a new component, 3 steps are required:
// - declaring it in this struct
// - adding a provider function in providers.go
// - adding the provider's function name to the arguments of wire.Build() in wire.go
//
// Components labeled as `wire:"-"` will be skipped and have to be initialized after the InitNewServer* call.
// For more information about wire refer to https://pkg.go.dev/github.com/google/wire
type Server struct {
	// skip wire:
	// -> initialized with router.Init(s) function
	Echo   *echo.Echo `wire:"-"`
	Router *Router    `wire:"-"`

	Config     config.Server
	Clock      time2.Clock
	Metrics    *metrics.Service
	Ledger     ledger.Client
	Connection ConnectionService
	Mailbox    *signer.Mailbox
	Signer     SignerService
	Confirm    ConfirmService
	Invoke     InvokeService
}

// newServerWithComponents is used by wire to initialize the server components.
// Components not listed here won't be handled by wire and should be initialized separately.
// Components which shouldn't be handled must be labeled `wire:"-"` in Server struct.
func newServerWithComponents(
	cfg config.Server,
	clock time2.Clock,
	metrics *metrics.Service,
	client ledger.Client,
	conn ConnectionService,
	mailbox *signer.Mailbox,
	signerService SignerService,
	confirmService ConfirmService,
	invokeService InvokeService,
) *Server {
	return &Server{
		Config:     cfg,
		Clock:      clock,
		Metrics:    metrics,
		Ledger:     client,
		Connection: conn,
		Mailbox:    mailbox,
		Signer:     signerService,
		Confirm:    confirmService,
		Invoke:     invokeService,
	}
}

func NewServer(config config.Server) *Server {
	s := &Server{
		Config: config,
	}

	return s
}

func (s *Server) Ready() bool {
	if err := util.IsStructInitialized(s); err != nil {
		log.Debug().Err(err).Msg("Server is not fully initialized")
		return false
	}

	return true
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return fmt.Errorf("failed to start echo server: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	if s.Invoke != nil {
		log.Debug().Msg("Waiting for running signing flows")

		done := make(chan struct{})
		go func() {
			s.Invoke.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			log.Error().Err(ctx.Err()).Msg("Signing flows still running at shutdown")
			errs = append(errs, ctx.Err())
		}
	}

	if s.Ledger != nil {
		log.Debug().Msg("Closing ledger client")
		s.Ledger.Close()
	}

	return errs
}
