package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config is the client's bootstrap configuration: connection defaults,
// per-host governance, logging, and the embedded test harness. Priority
// order is CLI flags > environment variables > last config file > ... >
// first config file > defaults, mirroring the layered TOML-plus-env
// resolution pattern this stack uses for its server configuration.
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Connection  ConnectionConfig `toml:"connection"`
	Governor    GovernorConfig `toml:"governor"`
	Logging     LoggingConfig  `toml:"logging"`
	QueryLog    QueryLogConfig `toml:"query_log"`
	TestHarness TestHarnessConfig `toml:"test_harness"`
}

// ConnectionConfig holds the default server endpoint and credentials a
// client is built from when no explicit options override them.
type ConnectionConfig struct {
	Endpoint string `toml:"endpoint"` // e.g. "https://cloud.terminusdb.com/"
	User     string `toml:"user"`
	Org      string `toml:"org"`
}

// GovernorConfig is the [governor] section's rate and concurrency policy.
// Environment variables (TERMINUSDB_RATE_LIMIT_READ,
// TERMINUSDB_CONCURRENCY_LIMIT_READ, etc) override its values, for all
// hosts, when the config is loaded. The client's governor registry does not
// read it: client governors come from WithGovernors or the environment.
type GovernorConfig struct {
	ReadRequestsPerSecond  float64 `toml:"read_requests_per_second"`
	ReadBurst              int     `toml:"read_burst"`
	ReadConcurrency        int     `toml:"read_concurrency"`
	WriteRequestsPerSecond float64 `toml:"write_requests_per_second"`
	WriteBurst             int     `toml:"write_burst"`
	WriteConcurrency       int     `toml:"write_concurrency"`
}

// LoggingConfig mirrors the structured-logging setup the rest of this
// stack uses: level, output sinks, and time format.
type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // default "15:04:05.000"
}

// QueryLogConfig configures the optional sink that receives a copy of
// every WOQL query the client executes.
type QueryLogConfig struct {
	Enabled        bool   `toml:"enabled"`
	WebsocketURL   string `toml:"websocket_url"`
	BufferSize     int    `toml:"buffer_size"`
}

// TestHarnessConfig is the [test_harness] section for the embedded
// badger-backed fake server. EmbeddedServer does not read it; the server is
// configured through its own options.
type TestHarnessConfig struct {
	DataDir         string `toml:"data_dir"`
	JanitorSchedule string `toml:"janitor_schedule"` // cron expression, default "@every 1m"
}

// NewDefaultConfig returns the configuration a freshly constructed client
// falls back to when nothing else is supplied.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Connection: ConnectionConfig{
			Endpoint: "http://127.0.0.1:6363/",
			User:     "admin",
		},
		Governor: GovernorConfig{
			ReadRequestsPerSecond:  20,
			ReadBurst:              20,
			ReadConcurrency:        8,
			WriteRequestsPerSecond: 5,
			WriteBurst:             5,
			WriteConcurrency:       2,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		QueryLog: QueryLogConfig{
			BufferSize: 256,
		},
		TestHarness: TestHarnessConfig{
			DataDir:         "./.terminusdb-test",
			JanitorSchedule: "@every 1m",
		},
	}
}

// LoadFromFile loads a single TOML config file over the defaults. An empty
// path returns the defaults unchanged.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads and merges zero or more TOML config files in order —
// later files override earlier ones — then applies environment overrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := ValidateJanitorSchedule(config.TestHarness.JanitorSchedule); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies TERMINUSDB_* environment variables over
// whatever the config files and defaults produced — the highest-priority
// layer short of explicit client options.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TERMINUSDB_ENV"); env != "" {
		config.Environment = env
	}
	if endpoint := os.Getenv("TERMINUSDB_ENDPOINT"); endpoint != "" {
		config.Connection.Endpoint = endpoint
	}
	if user := os.Getenv("TERMINUSDB_USER"); user != "" {
		config.Connection.User = user
	}
	if org := os.Getenv("TERMINUSDB_ORG"); org != "" {
		config.Connection.Org = org
	}

	if v := os.Getenv("TERMINUSDB_RATE_LIMIT_READ"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Governor.ReadRequestsPerSecond = f
		}
	}
	if v := os.Getenv("TERMINUSDB_CONCURRENCY_LIMIT_READ"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Governor.ReadConcurrency = n
		}
	}
	if v := os.Getenv("TERMINUSDB_RATE_LIMIT_WRITE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Governor.WriteRequestsPerSecond = f
		}
	}
	if v := os.Getenv("TERMINUSDB_CONCURRENCY_LIMIT_WRITE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Governor.WriteConcurrency = n
		}
	}

	if level := os.Getenv("TERMINUSDB_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies CLI-flag-level overrides, the highest
// priority layer in the config stack.
func ApplyFlagOverrides(config *Config, endpoint string) {
	if endpoint != "" {
		config.Connection.Endpoint = endpoint
	}
}

// ValidateJanitorSchedule checks that the test harness's janitor schedule
// parses as a valid cron expression before EmbeddedServer tries to
// schedule it.
func ValidateJanitorSchedule(schedule string) error {
	if schedule == "" {
		return nil
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }

// DeepCloneConfig returns an independent copy of c so callers can mutate
// derived configs (e.g. per-test harness instances) without racing the
// shared default.
func DeepCloneConfig(c *Config) *Config {
	clone := *c
	clone.Logging.Output = append([]string(nil), c.Logging.Output...)
	return &clone
}
