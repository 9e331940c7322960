package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/nicwaller/loglang-gelf/gelf"
)

// EnvPrefix is prepended to every environment override, eg. LOGLANG_GELF_HOST.
const EnvPrefix = "LOGLANG_GELF_"

// Config holds everything the forwarder needs. It is loaded once and not
// changed afterwards.
type Config struct {
	Host             string `yaml:"host" env:"HOST"`
	Port             int    `yaml:"port" env:"PORT"`
	Protocol         string `yaml:"protocol" env:"PROTOCOL"`
	ChunkSize        int    `yaml:"chunk_size" env:"CHUNK_SIZE"`
	Compression      string `yaml:"compression" env:"COMPRESSION"`
	CompressionLevel int    `yaml:"compression_level" env:"COMPRESSION_LEVEL"`

	Sender        string            `yaml:"sender" env:"SENDER"`
	Level         []string          `yaml:"level" env:"LEVEL"`
	Facility      string            `yaml:"facility" env:"FACILITY"`
	NotExtraField []string          `yaml:"not_extra_field" env:"NOT_EXTRA_FIELD"`
	CustomFields  map[string]string `yaml:"custom_fields" env:"CUSTOM_FIELDS"`

	// output conditions
	Type        string   `yaml:"type" env:"TYPE"`
	Tags        []string `yaml:"tags" env:"TAGS"`
	ExcludeTags []string `yaml:"exclude_tags" env:"EXCLUDE_TAGS"`

	MaxEventsPerSecond float64 `yaml:"max_events_per_second" env:"MAX_EVENTS_PER_SECOND"`

	Input       string            `yaml:"input" env:"INPUT"`
	InputType   string            `yaml:"input_type" env:"INPUT_TYPE"`
	Stdout      string            `yaml:"stdout" env:"STDOUT"`
	AddField    map[string]string `yaml:"add_field" env:"ADD_FIELD"`
	RemoveField []string          `yaml:"remove_field" env:"REMOVE_FIELD"`
	Rename      map[string]string `yaml:"rename" env:"RENAME"`
	AddTag      []string          `yaml:"add_tag" env:"ADD_TAG"`

	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
}

func Defaults() *Config {
	return &Config{
		Port:             gelf.DefaultPort,
		Protocol:         "udp",
		ChunkSize:        gelf.DefaultChunkSize,
		Compression:      "gzip",
		CompressionLevel: gelf.DefaultCompressionLevel,
		Sender:           "%{@source_host}",
		Level:            []string{"%{severity}", "INFO"},
		Facility:         gelf.DefaultFacility,
		Input:            "stdin",
		LogLevel:         "info",
	}
}

// Load layers defaults, the YAML file, .env, the environment and finally
// command-line flags, then validates the result.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("loglang-gelf", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", os.Getenv(EnvPrefix+"CONFIG"), "path to a YAML config file")
	host := fs.String("host", "", "GELF server host")
	port := fs.Int("port", 0, "GELF server port")
	protocol := fs.String("protocol", "", "udp or tcp")
	input := fs.String("input", "", "stdin or generator")
	stdout := fs.String("stdout", "", "also print events to stdout (json or yaml)")
	metricsAddr := fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Defaults()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config: %w", err)
		}
		defer f.Close()
		if err := cfg.decodeYAML(f); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", *configPath, err)
		}
	}

	// Attempt to load .env file for local development.
	_ = godotenv.Load()
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if fs.Changed("host") {
		cfg.Host = *host
	}
	if fs.Changed("port") {
		cfg.Port = *port
	}
	if fs.Changed("protocol") {
		cfg.Protocol = *protocol
	}
	if fs.Changed("input") {
		cfg.Input = *input
	}
	if fs.Changed("stdout") {
		cfg.Stdout = *stdout
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = *metricsAddr
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}

	return cfg, cfg.Validate()
}

func (c *Config) decodeYAML(r io.Reader) error {
	dat, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(dat)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(dat))
	dec.KnownFields(true)
	return dec.Decode(c)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Host) == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Port))
	}
	switch c.Protocol {
	case "udp", "tcp":
	default:
		errs = append(errs, fmt.Errorf("protocol must be 'udp' or 'tcp': %q", c.Protocol))
	}
	if c.ChunkSize < gelf.MinChunkSize || c.ChunkSize > gelf.MaxChunkSize {
		errs = append(errs, fmt.Errorf("chunk_size must be between %d and %d: %d",
			gelf.MinChunkSize, gelf.MaxChunkSize, c.ChunkSize))
	}
	if _, err := gelf.ParseCompression(c.Compression); err != nil {
		errs = append(errs, err)
	}
	if c.CompressionLevel < -2 || c.CompressionLevel > 9 {
		errs = append(errs, fmt.Errorf("compression_level must be between -2 and 9: %d", c.CompressionLevel))
	}
	if c.MaxEventsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("max_events_per_second must not be negative: %v", c.MaxEventsPerSecond))
	}
	switch c.Input {
	case "stdin", "generator":
	default:
		errs = append(errs, fmt.Errorf("input must be 'stdin' or 'generator': %q", c.Input))
	}
	switch c.Stdout {
	case "", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("stdout must be empty, 'json' or 'yaml': %q", c.Stdout))
	}
	return errors.Join(errs...)
}

// Address is the host:port of the GELF server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// CustomFieldValues converts custom fields to the builder's value type.
func (c *Config) CustomFieldValues() map[string]any {
	out := make(map[string]any, len(c.CustomFields))
	for k, v := range c.CustomFields {
		out[k] = v
	}
	return out
}
