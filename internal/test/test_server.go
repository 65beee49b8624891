package test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github/chapool/wallet-bridge/internal/api"
	"github/chapool/wallet-bridge/internal/api/router"
	"github/chapool/wallet-bridge/internal/config"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

// TestSignature is the signature FakeLedger hands out in test servers.
const TestSignature ledger.Signature = "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdpKuc147dw2N9d"

// TestServerConfig returns the env config tuned for fast tests.
func TestServerConfig() config.Server {
	cfg := config.DefaultServiceConfigFromEnv()

	cfg.Logger.Level = zerolog.Disabled
	cfg.Logger.RequestLevel = zerolog.Disabled
	cfg.Echo.HideInternalServerErrorDetails = false

	cfg.Confirm.Retries = 5
	cfg.Confirm.Delay = time.Millisecond
	cfg.Bridge.ResponseTimeout = 5 * time.Second
	cfg.Bridge.ListenerTTL = 5 * time.Second
	cfg.Bridge.LeaseTimeout = 5 * time.Second
	cfg.Bridge.PollTimeout = 50 * time.Millisecond

	return cfg
}

// WithTestServer returns a fully configured server backed by a FakeLedger
// answering with TestSignature.
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerConfigurable(t, TestServerConfig(), closure)
}

// WithTestServerConfigurable returns a fully configured server, allowing for
// configuration using the provided server config.
func WithTestServerConfigurable(t *testing.T, config config.Server, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerLedger(t, config, NewFakeLedger(TestSignature), closure)
}

// WithTestServerLedger returns a fully configured server talking to the given
// ledger client.
func WithTestServerLedger(t *testing.T, config config.Server, client ledger.Client, closure func(s *api.Server)) {
	t.Helper()

	zerolog.SetGlobalLevel(config.Logger.Level)

	s, err := api.InitNewServerWithLedger(config, client)
	if err != nil {
		t.Fatalf("failed to init server: %v", err)
	}

	router.Init(s)

	closure(s)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if errs := s.Shutdown(ctx); len(errs) > 0 {
		t.Fatalf("failed to shutdown server: %v", errs)
	}
}
