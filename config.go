package ggraph

import (
	"strings"
	"sync/atomic"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	// DefaultChunkSize is the maximum number of pixels a processor renders
	// in one Work call.
	DefaultChunkSize = 128 * 128

	// DefaultFileCacheLimit bounds the number of decoded source images kept
	// in memory by file loading operations.
	DefaultFileCacheLimit = 16

	// EnvPrefix prefixes every environment variable read by LoadConfig.
	EnvPrefix = "GGRAPH"
)

// Config holds runtime settings shared by the evaluation packages.
type Config struct {
	// ChunkSize bounds the area rendered by a single processor step.
	ChunkSize int `mapstructure:"chunk-size"`

	// Debug enables the debug pass of every evaluation, which logs the
	// have, need and result rectangles of each node at debug level.
	Debug bool `mapstructure:"debug"`

	// FileCacheLimit is the soft limit of the decoded image cache.
	FileCacheLimit int `mapstructure:"file-cache-limit"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize:      DefaultChunkSize,
		FileCacheLimit: DefaultFileCacheLimit,
	}
}

var configPtr atomic.Pointer[Config]

func init() {
	cfg := LoadConfig(NewViper())
	configPtr.Store(&cfg)
}

// NewViper returns a viper instance preloaded with defaults and bound to
// GGRAPH_* environment variables (GGRAPH_CHUNK_SIZE, GGRAPH_DEBUG, ...).
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("chunk-size", d.ChunkSize)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("file-cache-limit", d.FileCacheLimit)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads a Config from v. Invalid sizes fall back to defaults.
func LoadConfig(v *viper.Viper) Config {
	cfg := Config{
		ChunkSize:      v.GetInt("chunk-size"),
		Debug:          v.GetBool("debug"),
		FileCacheLimit: v.GetInt("file-cache-limit"),
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.FileCacheLimit < 0 {
		cfg.FileCacheLimit = DefaultFileCacheLimit
	}
	return cfg
}

// SetConfig replaces the active configuration.
func SetConfig(cfg Config) {
	configPtr.Store(&cfg)
}

// CurrentConfig returns the active configuration.
func CurrentConfig() Config {
	return *configPtr.Load()
}
