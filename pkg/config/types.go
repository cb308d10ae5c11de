package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent MouseTron configuration stored as
// config.toml in the .mousetron/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Memory    MemoryConfig    `toml:"memory"`
	Storage   StorageConfig   `toml:"storage"`
	API       APIConfig       `toml:"api"`
	Client    ClientConfig    `toml:"client"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Artifacts ArtifactsConfig `toml:"artifacts"`
	Events    EventsConfig    `toml:"events"`
}

// MemoryConfig holds the memory engine capacities and the containers
// directory. Capacities are fixed for the lifetime of a process.
type MemoryConfig struct {
	K           int `toml:"k,omitempty" validate:"gt=0"`
	T           int `toml:"t,omitempty" validate:"gt=0"`
	NR          int `toml:"nr,omitempty" validate:"gt=0"`
	NF          int `toml:"nf,omitempty" validate:"gt=0"`
	NS          int `toml:"ns,omitempty" validate:"gt=0"`
	MaxBlockLen int `toml:"max_block_len,omitempty" validate:"gte=0,lte=20"`

	// ContainersDir defaults to containers/ inside the .mousetron/ directory.
	ContainersDir string `toml:"containers_dir,omitempty"`
}

// StorageConfig selects the execution history store. With neither field set
// executions are kept in memory.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running
// "mousetron serve". Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty" validate:"omitempty,url"`
}

// CatalogConfig points at the tool description catalog.
type CatalogConfig struct {
	Path  string `toml:"path,omitempty"`
	Watch bool   `toml:"watch,omitempty"`
}

// ArtifactsConfig controls the per-rank recommendation files. An empty Dir
// disables them.
type ArtifactsConfig struct {
	Dir string `toml:"dir,omitempty"`
}

// EventsConfig selects the execution event publisher.
type EventsConfig struct {
	Provider string   `toml:"provider,omitempty" validate:"omitempty,oneof=nop kafka"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func intKey(key string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			*field(c) = n
			return nil
		},
	}
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"memory.k":              intKey("memory.k", func(c *Config) *int { return &c.Memory.K }),
	"memory.t":              intKey("memory.t", func(c *Config) *int { return &c.Memory.T }),
	"memory.nr":             intKey("memory.nr", func(c *Config) *int { return &c.Memory.NR }),
	"memory.nf":             intKey("memory.nf", func(c *Config) *int { return &c.Memory.NF }),
	"memory.ns":             intKey("memory.ns", func(c *Config) *int { return &c.Memory.NS }),
	"memory.max_block_len":  intKey("memory.max_block_len", func(c *Config) *int { return &c.Memory.MaxBlockLen }),
	"memory.containers_dir": stringKey(func(c *Config) *string { return &c.Memory.ContainersDir }),
	"storage.sqlite_path":   stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn":  stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),
	"api.listen":            stringKey(func(c *Config) *string { return &c.API.Listen }),
	"client.api_target":     stringKey(func(c *Config) *string { return &c.Client.APITarget }),
	"catalog.path":          stringKey(func(c *Config) *string { return &c.Catalog.Path }),
	"catalog.watch": {
		get: func(c *Config) string { return strconv.FormatBool(c.Catalog.Watch) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for catalog.watch: %w", err)
			}
			c.Catalog.Watch = b
			return nil
		},
	},
	"artifacts.dir":   stringKey(func(c *Config) *string { return &c.Artifacts.Dir }),
	"events.provider": stringKey(func(c *Config) *string { return &c.Events.Provider }),
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.Events.Brokers = nil
			for _, b := range strings.Split(v, ",") {
				if b = strings.TrimSpace(b); b != "" {
					c.Events.Brokers = append(c.Events.Brokers, b)
				}
			}
			return nil
		},
	},
	"events.topic": stringKey(func(c *Config) *string { return &c.Events.Topic }),
}
