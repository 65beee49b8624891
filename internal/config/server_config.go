package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github/chapool/wallet-bridge/internal/util"
)

type EchoServer struct {
	Debug                          bool
	ListenAddress                  string
	HideInternalServerErrorDetails bool
	BaseURL                        string
	EnableCORSMiddleware           bool
	EnableLoggerMiddleware         bool
	EnableRecoverMiddleware        bool
	EnableRequestIDMiddleware      bool
	EnableTrailingSlashMiddleware  bool
}

type LoggerServer struct {
	Level              zerolog.Level
	RequestLevel       zerolog.Level
	LogRequestBody     bool
	LogRequestHeader   bool
	LogRequestQuery    bool
	LogResponseBody    bool
	LogResponseHeader  bool
	LogCaller          bool
	PrettyPrintConsole bool
}

type ManagementServer struct {
	Secret           string `json:"-"` // sensitive
	ReadinessTimeout time.Duration
	LivenessTimeout  time.Duration
	EnableMetrics    bool
}

type LedgerServer struct {
	Kind                string
	RPCURLs             []string
	RequestsPerSecond   float64
	Burst               int
	AnchorCommitment    string
	SkipPreflight       bool
	PreflightCommitment string
	SearchHistory       bool
}

type ConfirmServer struct {
	Retries int
	Delay   time.Duration
	Target  string
}

type BridgeServer struct {
	// ResponseTimeout bounds how long one signature request waits for the wallet.
	ResponseTimeout time.Duration
	// ListenerTTL is how long after its last poll a wallet still counts as listening.
	ListenerTTL time.Duration
	// LeaseTimeout is how long a request handed to the wallet waits for its
	// answer before the next poll gets it again.
	LeaseTimeout time.Duration
	// PollTimeout is the long-poll window of GET /bridge/requests.
	PollTimeout time.Duration
}

type FlowsServer struct {
	MaxFlows  int
	Retention time.Duration
}

type Server struct {
	Echo       EchoServer
	Logger     LoggerServer
	Management ManagementServer
	Ledger     LedgerServer
	Confirm    ConfirmServer
	Bridge     BridgeServer
	Flows      FlowsServer
}

// DefaultServiceConfigFromEnv returns the server config as parsed from environment variables
// and their respective defaults defined below.
// We don't expect that ENV_VARs change while we are running our application or our tests
// (and it would be a bad thing to do anyways with parallel testing).
// Do NOT use os.Setenv / os.Unsetenv in tests utilizing DefaultServiceConfigFromEnv()!
func DefaultServiceConfigFromEnv() Server {
	// An `.env.local` file in your project root can override the currently set ENV variables.
	//
	// We never automatically apply `.env.local` when running "go test" as these ENV variables
	// may be sensitive (e.g. secrets to external APIs) and applying them modifies the process
	// global "os.Env" state (it should be applied via t.SetEnv instead).
	//
	// If you need dotenv ENV variables available in a test, do that explicitly within that
	// test before executing DefaultServiceConfigFromEnv (or test.WithTestServer).
	if !util.RunningInTest() {
		DotEnvTryLoad(filepath.Join(projectRootDir(), ".env.local"), os.Setenv)
	}

	return Server{
		Echo: EchoServer{
			Debug:                          util.GetEnvAsBool("SERVER_ECHO_DEBUG", false),
			ListenAddress:                  util.GetEnv("SERVER_ECHO_LISTEN_ADDRESS", ":8080"),
			HideInternalServerErrorDetails: util.GetEnvAsBool("SERVER_ECHO_HIDE_INTERNAL_SERVER_ERROR_DETAILS", true),
			BaseURL:                        util.GetEnv("SERVER_ECHO_BASE_URL", "http://localhost:8080"),
			EnableCORSMiddleware:           util.GetEnvAsBool("SERVER_ECHO_ENABLE_CORS_MIDDLEWARE", true),
			EnableLoggerMiddleware:         util.GetEnvAsBool("SERVER_ECHO_ENABLE_LOGGER_MIDDLEWARE", true),
			EnableRecoverMiddleware:        util.GetEnvAsBool("SERVER_ECHO_ENABLE_RECOVER_MIDDLEWARE", true),
			EnableRequestIDMiddleware:      util.GetEnvAsBool("SERVER_ECHO_ENABLE_REQUEST_ID_MIDDLEWARE", true),
			EnableTrailingSlashMiddleware:  util.GetEnvAsBool("SERVER_ECHO_ENABLE_TRAILING_SLASH_MIDDLEWARE", true),
		},
		Logger: LoggerServer{
			Level:              logLevelFromEnv("SERVER_LOGGER_LEVEL", zerolog.DebugLevel),
			RequestLevel:       logLevelFromEnv("SERVER_LOGGER_REQUEST_LEVEL", zerolog.DebugLevel),
			LogRequestBody:     util.GetEnvAsBool("SERVER_LOGGER_LOG_REQUEST_BODY", false),
			LogRequestHeader:   util.GetEnvAsBool("SERVER_LOGGER_LOG_REQUEST_HEADER", false),
			LogRequestQuery:    util.GetEnvAsBool("SERVER_LOGGER_LOG_REQUEST_QUERY", false),
			LogResponseBody:    util.GetEnvAsBool("SERVER_LOGGER_LOG_RESPONSE_BODY", false),
			LogResponseHeader:  util.GetEnvAsBool("SERVER_LOGGER_LOG_RESPONSE_HEADER", false),
			LogCaller:          util.GetEnvAsBool("SERVER_LOGGER_LOG_CALLER", false),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
		Management: ManagementServer{
			Secret:           util.GetEnv("SERVER_MANAGEMENT_SECRET", "mgmt-secret"),
			ReadinessTimeout: util.GetEnvAsDuration("SERVER_MANAGEMENT_READINESS_TIMEOUT", 4*time.Second),
			LivenessTimeout:  util.GetEnvAsDuration("SERVER_MANAGEMENT_LIVENESS_TIMEOUT", 9*time.Second),
			EnableMetrics:    util.GetEnvAsBool("SERVER_MANAGEMENT_ENABLE_METRICS", true),
		},
		Ledger: LedgerServer{
			Kind:                util.GetEnvEnum("LEDGER_KIND", "solana", []string{"solana", "evm"}),
			RPCURLs:             util.GetEnvAsStringArr("LEDGER_RPC_URLS", []string{"https://api.devnet.solana.com"}),
			RequestsPerSecond:   util.GetEnvAsFloat("LEDGER_REQUESTS_PER_SECOND", 10),
			Burst:               util.GetEnvAsInt("LEDGER_BURST", 5),
			AnchorCommitment:    util.GetEnv("LEDGER_ANCHOR_COMMITMENT", "finalized"),
			SkipPreflight:       util.GetEnvAsBool("LEDGER_SKIP_PREFLIGHT", false),
			PreflightCommitment: util.GetEnv("LEDGER_PREFLIGHT_COMMITMENT", "confirmed"),
			SearchHistory:       util.GetEnvAsBool("LEDGER_SEARCH_HISTORY", false),
		},
		Confirm: ConfirmServer{
			Retries: util.GetEnvAsInt("CONFIRM_RETRIES", 20),
			Delay:   util.GetEnvAsDuration("CONFIRM_DELAY", 500*time.Millisecond),
			Target:  util.GetEnv("CONFIRM_TARGET", "confirmed"),
		},
		Bridge: BridgeServer{
			ResponseTimeout: util.GetEnvAsDuration("BRIDGE_RESPONSE_TIMEOUT", 2*time.Minute),
			ListenerTTL:     util.GetEnvAsDuration("BRIDGE_LISTENER_TTL", 30*time.Second),
			LeaseTimeout:    util.GetEnvAsDuration("BRIDGE_LEASE_TIMEOUT", 15*time.Second),
			PollTimeout:     util.GetEnvAsDuration("BRIDGE_POLL_TIMEOUT", 25*time.Second),
		},
		Flows: FlowsServer{
			MaxFlows:  util.GetEnvAsInt("FLOWS_MAX", 1000),
			Retention: util.GetEnvAsDuration("FLOWS_RETENTION", time.Hour),
		},
	}
}

func logLevelFromEnv(key string, defaultVal zerolog.Level) zerolog.Level {
	level, err := zerolog.ParseLevel(util.GetEnv(key, defaultVal.String()))
	if err != nil {
		return defaultVal
	}

	return level
}

// projectRootDir returns the directory holding go.mod when running from
// source, falling back to the working directory.
func projectRootDir() string {
	if val, ok := os.LookupEnv("PROJECT_ROOT_DIR"); ok {
		return val
	}

	_, b, _, ok := runtime.Caller(0)
	if !ok {
		wd, _ := os.Getwd()
		return wd
	}

	return filepath.Join(filepath.Dir(b), "../..")
}
