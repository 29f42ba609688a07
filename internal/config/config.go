package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/delicious2fluid/internal/fluiddb"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sources/delicious"
)

const redacted = "***REDACTED***"

type Config struct {
	Delicious DeliciousConfig `yaml:"delicious"`
	FluidDB   FluidDBConfig   `yaml:"fluiddb"`
	Import    ImportConfig    `yaml:"import"`
	Sandbox   SandboxConfig   `yaml:"sandbox"`
	Journal   JournalConfig   `yaml:"journal"`

	HTTPTimeout time.Duration `yaml:"http_timeout"` // per request, source and destination

	LogLevel  string `yaml:"log_level"`  // console level: "debug" | "info" | "warn" | "error"
	PrettyLog bool   `yaml:"pretty_log"` // true => zap dev (color), false => zap prod (JSON)
	LogFile   string `yaml:"log_file"`   // always written at debug level, empty = no file
}

type DeliciousConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	File     string `yaml:"file"` // read this export instead of calling the API
}

type FluidDBConfig struct {
	URL       string `yaml:"url"` // instance URL, or "main" / "sandbox"
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Root      string `yaml:"root"`       // destination root namespace, defaults to Username
	TagLayout string `yaml:"tag_layout"` // "root" | "nested"
}

type ImportConfig struct {
	SkipPrivate     bool `yaml:"skip_private"`
	ContinueOnError bool `yaml:"continue_on_error"`
}

type SandboxConfig struct {
	Listen          string        `yaml:"listen"`
	Users           []string      `yaml:"users"` // extra "name:password" accounts
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type JournalConfig struct {
	RedisAddr      string        `yaml:"redis_addr"` // empty = journal disabled
	RedisUsername  string        `yaml:"redis_username"`
	RedisPassword  string        `yaml:"redis_password"`
	RedisDB        int           `yaml:"redis_db"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	RetryInterval  time.Duration `yaml:"retry_interval"`
	MaxWait        time.Duration `yaml:"max_wait"`
	PingTimeout    time.Duration `yaml:"ping_timeout"`
	WarnThreshold  int           `yaml:"warn_threshold"`
}

// Enabled reports whether a journal is configured.
func (j JournalConfig) Enabled() bool { return j.RedisAddr != "" }

// Default returns the configuration used when neither file nor environment say otherwise.
func Default() *Config {
	return &Config{
		Delicious: DeliciousConfig{URL: delicious.DefaultBaseURL},
		FluidDB:   FluidDBConfig{URL: "main", TagLayout: "root"},
		Import:    ImportConfig{SkipPrivate: true},
		Sandbox: SandboxConfig{
			Listen:          ":9000",
			ShutdownTimeout: 5 * time.Second,
		},
		Journal: JournalConfig{
			ConnectTimeout: 5 * time.Second,
			RetryInterval:  500 * time.Millisecond,
			MaxWait:        2 * time.Second,
			PingTimeout:    time.Second,
			WarnThreshold:  3,
		},
		HTTPTimeout: 30 * time.Second,
		LogLevel:    "info",
		PrettyLog:   true,
		LogFile:     "d2f.log",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if any),
// then D2F_* environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if cfg.FluidDB.Root == "" {
		cfg.FluidDB.Root = cfg.FluidDB.Username
	}
	cfg.FluidDB.Root = NormalizeRoot(cfg.FluidDB.Root)
	cfg.FluidDB.URL = fluiddb.ResolveInstance(cfg.FluidDB.URL)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Delicious.URL = getenv("D2F_DELICIOUS_URL", c.Delicious.URL)
	c.Delicious.Username = getenv("D2F_DELICIOUS_USERNAME", c.Delicious.Username)
	c.Delicious.Password = getenv("D2F_DELICIOUS_PASSWORD", c.Delicious.Password)
	c.Delicious.File = getenv("D2F_DELICIOUS_FILE", c.Delicious.File)

	c.FluidDB.URL = getenv("D2F_FLUIDDB_URL", c.FluidDB.URL)
	c.FluidDB.Username = getenv("D2F_FLUIDDB_USERNAME", c.FluidDB.Username)
	c.FluidDB.Password = getenv("D2F_FLUIDDB_PASSWORD", c.FluidDB.Password)
	c.FluidDB.Root = getenv("D2F_FLUIDDB_ROOT", c.FluidDB.Root)
	c.FluidDB.TagLayout = getenv("D2F_FLUIDDB_TAG_LAYOUT", c.FluidDB.TagLayout)

	c.Import.SkipPrivate = mustBool("D2F_SKIP_PRIVATE", c.Import.SkipPrivate)
	c.Import.ContinueOnError = mustBool("D2F_CONTINUE_ON_ERROR", c.Import.ContinueOnError)

	c.Sandbox.Listen = getenv("D2F_SANDBOX_LISTEN", c.Sandbox.Listen)
	if users := splitAndTrim(os.Getenv("D2F_SANDBOX_USERS")); users != nil {
		c.Sandbox.Users = users
	}
	c.Sandbox.ShutdownTimeout = mustDuration("D2F_SANDBOX_SHUTDOWN_TIMEOUT", c.Sandbox.ShutdownTimeout)

	c.Journal.RedisAddr = getenv("D2F_REDIS_ADDR", c.Journal.RedisAddr)
	c.Journal.RedisUsername = getenv("D2F_REDIS_USERNAME", c.Journal.RedisUsername)
	c.Journal.RedisPassword = getenv("D2F_REDIS_PASSWORD", c.Journal.RedisPassword)
	c.Journal.RedisDB = getenvInt("D2F_REDIS_DB", c.Journal.RedisDB)
	c.Journal.ConnectTimeout = mustDuration("D2F_REDIS_CONNECT_TIMEOUT", c.Journal.ConnectTimeout)
	c.Journal.RetryInterval = mustDuration("D2F_REDIS_RETRY_INTERVAL", c.Journal.RetryInterval)
	c.Journal.MaxWait = mustDuration("D2F_REDIS_MAX_WAIT", c.Journal.MaxWait)
	c.Journal.PingTimeout = mustDuration("D2F_REDIS_PING_TIMEOUT", c.Journal.PingTimeout)
	c.Journal.WarnThreshold = getenvInt("D2F_REDIS_WARN_THRESHOLD", c.Journal.WarnThreshold)

	c.HTTPTimeout = mustDuration("D2F_HTTP_TIMEOUT", c.HTTPTimeout)
	c.LogLevel = getenv("D2F_LOG_LEVEL", c.LogLevel)
	c.PrettyLog = mustBool("D2F_PRETTY_LOG", c.PrettyLog)
	c.LogFile = getenv("D2F_LOG_FILE", c.LogFile)
}

// Validate checks values that every command relies on.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.HTTPTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Delicious),
		validation.Field(&c.FluidDB),
		validation.Field(&c.Sandbox),
		validation.Field(&c.Journal),
	)
}

func (d DeliciousConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.URL, validation.When(d.File == "", validation.Required, is.RequestURL)),
	)
}

func (f FluidDBConfig) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.URL, validation.Required, is.RequestURL),
		validation.Field(&f.TagLayout, validation.In("root", "nested")),
	)
}

func (s SandboxConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Listen, validation.Required),
		validation.Field(&s.Users, validation.Each(validation.By(checkUserEntry))),
	)
}

func (j JournalConfig) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.RedisDB, validation.Min(0), validation.Max(15)),
	)
}

// ValidateImport checks what an import needs beyond Validate. A dry run never
// touches the destination, so its credentials are not required then.
func (c *Config) ValidateImport(dryRun bool) error {
	return validation.Errors{
		"delicious.username": validation.Validate(c.Delicious.Username, validation.When(c.Delicious.File == "", validation.Required)),
		"delicious.password": validation.Validate(c.Delicious.Password, validation.When(c.Delicious.File == "", validation.Required)),
		"fluiddb.username":   validation.Validate(c.FluidDB.Username, validation.When(!dryRun, validation.Required)),
		"fluiddb.password":   validation.Validate(c.FluidDB.Password, validation.When(!dryRun, validation.Required)),
		"fluiddb.root":       validation.Validate(c.FluidDB.Root, validation.When(!dryRun, validation.Required)),
	}.Filter()
}

func checkUserEntry(value interface{}) error {
	s, _ := value.(string)
	if name, pw, ok := strings.Cut(s, ":"); !ok || name == "" || pw == "" {
		return errors.New(`must be "name:password"`)
	}
	return nil
}

// SandboxUsers returns the accounts the sandbox accepts: the FluidDB
// credentials plus any extra "name:password" entries.
func (c *Config) SandboxUsers() map[string]string {
	users := make(map[string]string, len(c.Sandbox.Users)+1)
	if c.FluidDB.Username != "" {
		users[c.FluidDB.Username] = c.FluidDB.Password
	}
	for _, entry := range c.Sandbox.Users {
		if name, pw, ok := strings.Cut(entry, ":"); ok {
			users[name] = pw
		}
	}
	return users
}

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.Delicious.Password != "" {
		cp.Delicious.Password = redacted
	}
	if cp.FluidDB.Password != "" {
		cp.FluidDB.Password = redacted
	}
	if cp.Journal.RedisPassword != "" {
		cp.Journal.RedisPassword = redacted
	}
	if len(cp.Sandbox.Users) > 0 {
		users := make([]string, len(cp.Sandbox.Users))
		for i, entry := range cp.Sandbox.Users {
			name, _, _ := strings.Cut(entry, ":")
			users[i] = name + ":" + redacted
		}
		cp.Sandbox.Users = users
	}
	return cp
}

// NormalizeRoot drops empty path segments: "/alice//x/" becomes "alice/x".
func NormalizeRoot(root string) string {
	parts := strings.Split(root, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
