package config

import (
	"fmt"
	"os"

	"waveform-streamer/src/headercache"
	"waveform-streamer/src/helpers"
	"waveform-streamer/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Default values applied to optional settings left empty in the YAML file.
const (
	DefaultChunkSize             = 1 << 20
	DefaultAcquisitionIntervalMs = 100
	DefaultStopGraceMs           = 2000
	DefaultConnectRetries        = 3
	DefaultHistorySize           = 128
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a validated Config from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError(err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Instrument.DefaultChunkSize == 0 {
		c.Instrument.DefaultChunkSize = DefaultChunkSize
	}
	if c.Instrument.AcquisitionIntervalMs == 0 {
		c.Instrument.AcquisitionIntervalMs = DefaultAcquisitionIntervalMs
	}
	if c.Client.ChunkSize == 0 {
		c.Client.ChunkSize = DefaultChunkSize
	}
	if c.Client.StopGraceMs == 0 {
		c.Client.StopGraceMs = DefaultStopGraceMs
	}
	if c.Client.ConnectRetries == 0 {
		c.Client.ConnectRetries = DefaultConnectRetries
	}
	if len(c.Client.UpdateCriterion) == 0 {
		c.Client.UpdateCriterion = []string{"any_acquisition"}
	}
	if c.Diagnostics.HistorySize == 0 {
		c.Diagnostics.HistorySize = DefaultHistorySize
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Status server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort < 0 || c.GrpcPort > 65535 {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Instrument
	if c.Instrument.AcquisitionIntervalMs < 0 {
		return fmt.Errorf("acquisition interval cannot be negative")
	}
	if c.Instrument.DefaultChunkSize <= 10 {
		return fmt.Errorf("default chunk size must be greater than 10 bytes")
	}
	seen := make(map[string]bool)
	for i, ch := range c.Instrument.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channel %d must have a name", i)
		}
		if seen[ch.Name] {
			return fmt.Errorf("channel '%s' is defined twice", ch.Name)
		}
		seen[ch.Name] = true
		if ch.RecordLength < 0 {
			return fmt.Errorf("channel '%s' record length cannot be negative", ch.Name)
		}
		if !knownChannelTypes[ch.Type] {
			return fmt.Errorf("channel '%s' has unsupported type '%s'", ch.Name, ch.Type)
		}
	}

	// Client
	if c.Client.ChunkSize <= 10 {
		return fmt.Errorf("client chunk size must be greater than 10 bytes")
	}
	if c.Client.StopGraceMs < 0 {
		return fmt.Errorf("stop grace cannot be negative")
	}
	if c.Client.ConnectRetries < 0 {
		return fmt.Errorf("connect retries cannot be negative")
	}
	if _, err := headercache.ParseCriterion(c.Client.UpdateCriterion); err != nil {
		return err
	}
	for i, sym := range c.Client.Symbols {
		if sym == "" {
			return fmt.Errorf("client symbol %d cannot be empty", i)
		}
	}

	return nil
}

var knownChannelTypes = map[string]bool{
	"float32":     true,
	"normalized":  true,
	"int16":       true,
	"int8":        true,
	"iq16":        true,
	"iq32":        true,
	"digital8":    true,
	"digital16":   true,
	"measurement": true,
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
