//go:build wireinject

package api

import (
	"github.com/google/wire"
	"github/chapool/wallet-bridge/internal/config"
	"github/chapool/wallet-bridge/internal/metrics"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	NewClock,
	NewConnection,
	NewMailbox,
	NewSigner,
	NewConfirm,
	NewInvoke,
	metrics.New,
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet, NewLedger)
	return new(Server), nil
}

// InitNewServerWithLedger returns a new Server instance with the given ledger client.
// All the other components are initialized via go wire according to the configuration.
func InitNewServerWithLedger(
	_ config.Server,
	_ ledger.Client,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}
