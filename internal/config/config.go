package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/ssr/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "ssr.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultMode is the default delivery mode for page requests.
	DefaultMode = "stream"

	// DefaultOutDir is the default prerender output directory.
	DefaultOutDir = "dist"

	// DefaultMetricsPath is where Prometheus metrics are served.
	DefaultMetricsPath = "/metrics"
)

// configFileNames lists the files Load looks for, in order.
var configFileNames = []string{ConfigFileName, "ssr.yaml", "ssr.yml"}

// Config represents the complete ssr configuration.
type Config struct {
	// Render contains session defaults.
	Render RenderConfig `json:"render,omitempty" yaml:"render,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// Prerender contains static generation configuration.
	Prerender PrerenderConfig `json:"prerender,omitempty" yaml:"prerender,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RenderConfig contains render session defaults.
type RenderConfig struct {
	// CompressHTML drops generated whitespace.
	CompressHTML bool `json:"compressHTML,omitempty" yaml:"compressHTML,omitempty"`

	// Partial renders fragments without a doctype.
	Partial bool `json:"partial,omitempty" yaml:"partial,omitempty"`

	// Lang is the html lang attribute of generated documents.
	Lang string `json:"lang,omitempty" yaml:"lang,omitempty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Mode is the delivery adapter: string, stream or pull.
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// WebSocket enables the WebSocket endpoint.
	WebSocket bool `json:"websocket,omitempty" yaml:"websocket,omitempty"`

	// WebSocketPath is the URL prefix of the WebSocket endpoint.
	WebSocketPath string `json:"websocketPath,omitempty" yaml:"websocketPath,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`

	// StaticDir is a directory of files served as-is. Relative paths are
	// resolved against the config file directory.
	StaticDir string `json:"staticDir,omitempty" yaml:"staticDir,omitempty"`

	// StaticPrefix is the URL prefix for StaticDir (default "/static/").
	StaticPrefix string `json:"staticPrefix,omitempty" yaml:"staticPrefix,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// PrerenderConfig contains static generation settings.
type PrerenderConfig struct {
	// OutDir is the directory pages are written to when S3 is not used.
	OutDir string `json:"outDir,omitempty" yaml:"outDir,omitempty"`

	// Routes lists the routes to prerender. Empty means all known routes.
	Routes []string `json:"routes,omitempty" yaml:"routes,omitempty"`

	// S3 uploads pages to a bucket instead of OutDir.
	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config contains S3 upload settings.
type S3Config struct {
	Bucket       string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix       string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region       string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty" yaml:"usePathStyle,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for ssr.json, ssr.yaml and ssr.yml, in that order.
func Load(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E121").
		WithDetail("No ssr.json, ssr.yaml or ssr.yml found in " + dir).
		WithSuggestion("Create ssr.json or run without a config file to use the defaults")
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// depending on the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	if !isYAML(path) {
		// Add newline at end of file
		data = append(data, '\n')
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Render.Lang == "" {
		c.Render.Lang = "en"
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Mode == "" {
		c.Server.Mode = DefaultMode
	}
	if c.Server.WebSocketPath == "" {
		c.Server.WebSocketPath = "/_ws"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Server.StaticPrefix == "" {
		c.Server.StaticPrefix = "/static/"
	}

	// Observability
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "ssr"
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "github.com/vango-dev/ssr"
	}

	// Prerender
	if c.Prerender.OutDir == "" {
		c.Prerender.OutDir = DefaultOutDir
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Server.Port))
	}
	switch c.Server.Mode {
	case "string", "stream", "pull":
	default:
		return errors.New("E123").
			WithDetail("Unknown render mode " + strconv.Quote(c.Server.Mode)).
			WithSuggestion("Set server.mode to string, stream or pull")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Server.StaticPrefix, "/") {
		return errors.New("E120").
			WithDetail("server.staticPrefix must start with '/'")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E120").
			WithDetail("metrics.path must start with '/'")
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// OutPath returns the absolute path to the prerender output directory.
func (c *Config) OutPath() string {
	if filepath.IsAbs(c.Prerender.OutDir) {
		return c.Prerender.OutDir
	}
	return filepath.Join(c.Dir(), c.Prerender.OutDir)
}

// StaticPath returns the static directory resolved against Dir.
func (c *Config) StaticPath() string {
	if c.Server.StaticDir == "" || filepath.IsAbs(c.Server.StaticDir) {
		return c.Server.StaticDir
	}
	return filepath.Join(c.Dir(), c.Server.StaticDir)
}

// NewLogger returns a slog logger writing to w with the configured level
// and format.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.New("E124").
			WithDetail("Unknown log level " + strconv.Quote(s))
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range configFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E121").
				WithDetail("No ssr config found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadOrDefault loads the config from dir, falling back to defaults when
// no config file exists. Other errors are returned.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.CodeOf(err) == "E121" {
		return New(), nil
	}
	return cfg, err
}
