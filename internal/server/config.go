package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/mortgage-schedule/internal/config"
	"github.com/iwvelando/mortgage-schedule/internal/tracing"
	"github.com/iwvelando/mortgage-schedule/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address       string                 `yaml:"address"`
	MaxBodySize   string                 `yaml:"maxBodySize"`
	Logging       config.LoggingConfig   `yaml:"logging"`
	Simulator     config.SimulatorConfig `yaml:"simulator"`
	Cache         CacheConfig            `yaml:"cache"`
	Tracing       tracing.Config         `yaml:"tracing"`
	bodySizeBytes int64
}

// CacheConfig selects where computed schedules are memoized.
type CacheConfig struct {
	Backend      string `yaml:"backend"` // none, memory, redis
	RedisAddress string `yaml:"redisAddress"`
	TTL          string `yaml:"ttl"` // Go duration, e.g. 10m
	ttl          time.Duration
}

// TTLDuration returns the parsed entry lifetime.
func (c CacheConfig) TTLDuration() time.Duration {
	return c.ttl
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{
		Address:     constants.DefaultServerAddress,
		MaxBodySize: strconv.FormatInt(constants.DefaultMaxBodySizeBytes, 10),
		Simulator:   config.DefaultSimulatorConfig(),
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     (constants.DefaultCacheTTLSeconds * time.Second).String(),
			ttl:     constants.DefaultCacheTTLSeconds * time.Second,
		},
		Tracing:       tracing.Config{ServiceName: constants.DefaultServiceName},
		bodySizeBytes: constants.DefaultMaxBodySizeBytes,
	}
	return cfg
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// SetBodySizeBytes overrides the configured request body limit.
func (c *Config) SetBodySizeBytes(size int64) {
	if size > 0 {
		c.bodySizeBytes = size
		c.MaxBodySize = strconv.FormatInt(size, 10)
	}
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	c.Simulator = c.Simulator.Normalize()
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = constants.DefaultServiceName
	}

	if err := c.Cache.normalize(); err != nil {
		return err
	}

	sizeStr := strings.TrimSpace(c.MaxBodySize)
	if sizeStr == "" {
		c.bodySizeBytes = constants.DefaultMaxBodySizeBytes
		c.MaxBodySize = strconv.FormatInt(constants.DefaultMaxBodySizeBytes, 10)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.bodySizeBytes = bytes
	return nil
}

func (c *CacheConfig) normalize() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case "":
		c.Backend = CacheMemory
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.RedisAddress == "" {
			return fmt.Errorf("cache backend %s requires redisAddress", CacheRedis)
		}
	default:
		return fmt.Errorf("unsupported cache backend %q", c.Backend)
	}

	if strings.TrimSpace(c.TTL) == "" {
		c.ttl = constants.DefaultCacheTTLSeconds * time.Second
		c.TTL = c.ttl.String()
		return nil
	}
	ttl, err := time.ParseDuration(strings.TrimSpace(c.TTL))
	if err != nil {
		return fmt.Errorf("invalid cache ttl %q: %w", c.TTL, err)
	}
	if ttl < 0 {
		return fmt.Errorf("cache ttl must not be negative, got %s", c.TTL)
	}
	c.ttl = ttl
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
