package configuration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.json"

// Config is resolved once per serving loop and never mutated afterwards; a
// reload builds a new value.
type Config struct {
	Host         string        `yaml:"host" env:"MOCK_HOST,overwrite"`
	Port         int           `yaml:"port" env:"MOCK_PORT,overwrite"`
	MockDir      string        `yaml:"mock_dir" env:"MOCK_DIR,overwrite"`
	AdminPort    int           `yaml:"admin_port" env:"MOCK_ADMIN_PORT,overwrite"`       // 0 disables the admin API
	PollInterval time.Duration `yaml:"poll_interval" env:"MOCK_POLL_INTERVAL,overwrite"` // e.g. "500ms"
	LogLevel     string        `yaml:"log_level" env:"MOCK_LOG_LEVEL,overwrite"`
	LogFormat    string        `yaml:"log_format" env:"MOCK_LOG_FORMAT,overwrite"` // text or json
}

func Defaults() Config {
	return Config{
		Host:         "localhost",
		Port:         8000,
		MockDir:      "mocks",
		PollInterval: time.Second,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load resolves the configuration from defaults, the file at path and the
// process environment, in that order.
func Load(ctx context.Context, path string) (Config, error) {
	return LoadWith(ctx, path, envconfig.OsLookuper())
}

func LoadWith(ctx context.Context, path string, lookuper envconfig.Lookuper) (Config, error) {
	config := Defaults()

	if err := loadFile(path, &config); err != nil {
		log.Warnf("%s. Using default configuration.", err.Error())
		config = Defaults()
	}

	if err := envconfig.ProcessWith(ctx, &config, lookuper); err != nil {
		return config, errors.Wrap(err, "process env config")
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Compacted JSON is valid YAML, so one decoder serves both formats.
func loadFile(path string, config *Config) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Errorf("%s not found", path)
		}
		return errors.Wrapf(err, "could not read %s", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		// tabs may not indent YAML
		data = pretty.Ugly(data)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return errors.Wrapf(err, "could not decode %s", path)
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("port %d is out of range", c.Port)
	}
	if c.AdminPort < 0 || c.AdminPort > 65535 {
		return errors.Errorf("admin port %d is out of range", c.AdminPort)
	}
	if c.AdminPort != 0 && c.AdminPort == c.Port {
		return errors.New("admin port must differ from the mock port")
	}
	if strings.TrimSpace(c.MockDir) == "" {
		return errors.New("mock directory must be set")
	}
	if c.PollInterval <= 0 {
		return errors.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log level")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.Errorf("unsupported log format %q", c.LogFormat)
	}
	return nil
}

// ConfigureLogging applies the level and format to the global logger.
func ConfigureLogging(c Config) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
