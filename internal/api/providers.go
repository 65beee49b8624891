package api

import (
	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github/chapool/wallet-bridge/internal/config"
	"github/chapool/wallet-bridge/internal/metrics"
	"github/chapool/wallet-bridge/internal/wallet/confirm"
	"github/chapool/wallet-bridge/internal/wallet/connection"
	"github/chapool/wallet-bridge/internal/wallet/invoke"
	"github/chapool/wallet-bridge/internal/wallet/ledger"
	"github/chapool/wallet-bridge/internal/wallet/signer"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirement for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

func NewClock() time2.Clock {
	return time2.DefaultClock
}

// LedgerOptions maps the ledger config section to client options.
func LedgerOptions(cfg config.Server) (ledger.Options, error) {
	opts := ledger.Options{
		Kind:              ledger.Kind(cfg.Ledger.Kind),
		URLs:              cfg.Ledger.RPCURLs,
		RequestsPerSecond: cfg.Ledger.RequestsPerSecond,
		Burst:             cfg.Ledger.Burst,
		SkipPreflight:     cfg.Ledger.SkipPreflight,
		SearchHistory:     cfg.Ledger.SearchHistory,
	}

	var ok bool
	if opts.AnchorCommitment, ok = ledger.ParseCommitment(cfg.Ledger.AnchorCommitment); !ok {
		return opts, errors.Errorf("invalid anchor commitment %q", cfg.Ledger.AnchorCommitment)
	}
	if opts.PreflightCommitment, ok = ledger.ParseCommitment(cfg.Ledger.PreflightCommitment); !ok {
		return opts, errors.Errorf("invalid preflight commitment %q", cfg.Ledger.PreflightCommitment)
	}

	return opts, nil
}

//nolint:ireturn
func NewLedger(cfg config.Server) (ledger.Client, error) {
	opts, err := LedgerOptions(cfg)
	if err != nil {
		return nil, err
	}

	client, err := ledger.New(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ledger client")
	}

	return client, nil
}

//nolint:ireturn
func NewConnection() ConnectionService {
	return connection.NewService()
}

func NewMailbox(cfg config.Server, clock time2.Clock) *signer.Mailbox {
	return signer.NewMailbox(clock, cfg.Bridge.ListenerTTL, cfg.Bridge.LeaseTimeout)
}

//nolint:ireturn
func NewSigner(cfg config.Server, mailbox *signer.Mailbox, client ledger.Client) SignerService {
	return signer.NewService(mailbox, client, cfg.Bridge.ResponseTimeout)
}

// ConfirmConfig maps the confirm config section to poller settings.
func ConfirmConfig(cfg config.Server) (confirm.Config, error) {
	target, ok := ledger.ParseCommitment(cfg.Confirm.Target)
	if !ok {
		return confirm.Config{}, errors.Errorf("invalid confirm target %q", cfg.Confirm.Target)
	}
	if target < ledger.CommitmentConfirmed {
		return confirm.Config{}, errors.Errorf("confirm target must be confirmed or finalized, got %q", cfg.Confirm.Target)
	}

	return confirm.Config{
		Retries: cfg.Confirm.Retries,
		Delay:   cfg.Confirm.Delay,
		Target:  target,
	}, nil
}

//nolint:ireturn
func NewConfirm(cfg config.Server, client ledger.Client) (ConfirmService, error) {
	confirmConfig, err := ConfirmConfig(cfg)
	if err != nil {
		return nil, err
	}

	return confirm.NewService(client, confirmConfig), nil
}

//nolint:ireturn
func NewInvoke(
	cfg config.Server,
	conn ConnectionService,
	signerService SignerService,
	client ledger.Client,
	confirmService ConfirmService,
	m *metrics.Service,
	clock time2.Clock,
) InvokeService {
	return invoke.NewService(conn, signerService, client, confirmService, m, clock, invoke.Config{
		MaxFlows:  cfg.Flows.MaxFlows,
		Retention: cfg.Flows.Retention,
	})
}
