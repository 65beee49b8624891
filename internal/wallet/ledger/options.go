package ledger

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Options configure a ledger backend.
type Options struct {
	Kind                Kind
	URLs                []string
	RequestsPerSecond   float64 // <= 0 disables client-side rate limiting
	Burst               int
	AnchorCommitment    Commitment
	SkipPreflight       bool
	PreflightCommitment Commitment
	SearchHistory       bool // also search the ledger's history when looking up statuses
}

// ParseRPCURLs splits a comma separated endpoint list.
func ParseRPCURLs(rpcURL string) []string {
	if rpcURL == "" {
		return nil
	}

	urls := strings.Split(rpcURL, ",")
	result := make([]string, 0, len(urls))

	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url != "" {
			result = append(result, url)
		}
	}

	return result
}

// New creates the backend selected by opts.Kind.
//
//nolint:ireturn
func New(opts Options) (Client, error) {
	switch opts.Kind {
	case KindSolana, "":
		return NewSolanaClient(opts)
	case KindEVM:
		return NewEVMClient(opts)
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "kind %q", opts.Kind)
	}
}

// endpoints rotates through a list of RPC URLs. A failed call moves the cursor
// so the next call goes to another node; calls themselves are never retried.
type endpoints struct {
	mu      sync.RWMutex
	urls    []string
	current int
	limiter *rate.Limiter
}

func newEndpoints(opts Options) (*endpoints, error) {
	if len(opts.URLs) == 0 {
		return nil, ErrNoEndpoints
	}

	e := &endpoints{urls: opts.URLs}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return e, nil
}

func (e *endpoints) index() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.current
}

func (e *endpoints) url(idx int) string {
	return e.urls[idx]
}

func (e *endpoints) markFailed(idx int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == idx {
		e.current = (idx + 1) % len(e.urls)
	}
}

func (e *endpoints) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter")
	}

	return nil
}
