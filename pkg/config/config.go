/*
Package config manages the TOML config of termserve.

The file is created with defaults on first use:

	[server]
	max_results = 64
	min_prefix = 1
	max_prefix = 256

	[relation]
	source = "searchdatabase.db"
	index = "trie"

	[query]
	colon_attr = false

	[cli]
	default_limit = 24
	async = false

A file that fails to decode is parsed section by section, so the valid parts
still apply and the rest falls back to defaults.
*/
package config

import (
	"path/filepath"

	"github.com/bastiangx/termserve/internal/utils"
	"github.com/charmbracelet/log"
)

// FileName is the config file created in the config directory.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Relation RelationConfig `toml:"relation"`
	Query    QueryConfig    `toml:"query"`
	CLI      CliConfig      `toml:"cli"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxResults int `toml:"max_results"`
	MinPrefix  int `toml:"min_prefix"`
	MaxPrefix  int `toml:"max_prefix"`
}

// RelationConfig selects the reference relation and how it is indexed.
type RelationConfig struct {
	Source string `toml:"source"`
	Index  string `toml:"index"`
}

// QueryConfig tunes the query grammar.
type QueryConfig struct {
	ColonAttr bool `toml:"colon_attr"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	Async        bool `toml:"async"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxResults: 64,
			MinPrefix:  1,
			MaxPrefix:  256,
		},
		Relation: RelationConfig{
			Source: "searchdatabase.db",
			Index:  "trie",
		},
		Query: QueryConfig{
			ColonAttr: false,
		},
		CLI: CliConfig{
			DefaultLimit: 24,
			Async:        false,
		},
	}
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath(FileName)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/termserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if utils.FileExists(customConfigPath) {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s. Trying default path...", customConfigPath)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.DecodeTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse keeps every key of every table that still decodes.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	sections, err := utils.RecoverTOMLFile(configPath)
	if err != nil {
		log.Warnf("Could not read %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}
	recovered := config.recover(sections)
	log.Warnf("Recovered %d settings from %s, the rest use defaults", recovered, configPath)
	config.sanitize()
	return config, nil
}

// recover copies every well-typed key of sections into c and returns how
// many were applied.
func (c *Config) recover(sections utils.Sections) int {
	n := 0
	ints := []struct {
		table, key string
		dst        *int
	}{
		{"server", "max_results", &c.Server.MaxResults},
		{"server", "min_prefix", &c.Server.MinPrefix},
		{"server", "max_prefix", &c.Server.MaxPrefix},
		{"cli", "default_limit", &c.CLI.DefaultLimit},
	}
	for _, f := range ints {
		if v, ok := sections.Int(f.table, f.key); ok {
			*f.dst = v
			n++
		}
	}

	strs := []struct {
		table, key string
		dst        *string
	}{
		{"relation", "source", &c.Relation.Source},
		{"relation", "index", &c.Relation.Index},
	}
	for _, f := range strs {
		if v, ok := sections.String(f.table, f.key); ok {
			*f.dst = v
			n++
		}
	}

	bools := []struct {
		table, key string
		dst        *bool
	}{
		{"query", "colon_attr", &c.Query.ColonAttr},
		{"cli", "async", &c.CLI.Async},
	}
	for _, f := range bools {
		if v, ok := sections.Bool(f.table, f.key); ok {
			*f.dst = v
			n++
		}
	}
	return n
}

// sanitize replaces out of range values with defaults.
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Server.MaxResults < 1 {
		log.Warnf("Invalid max_results %d, using %d", c.Server.MaxResults, def.Server.MaxResults)
		c.Server.MaxResults = def.Server.MaxResults
	}
	if c.Server.MinPrefix < 0 {
		c.Server.MinPrefix = def.Server.MinPrefix
	}
	if c.Server.MaxPrefix < c.Server.MinPrefix {
		log.Warnf("max_prefix %d below min_prefix %d, using %d", c.Server.MaxPrefix, c.Server.MinPrefix, def.Server.MaxPrefix)
		c.Server.MaxPrefix = def.Server.MaxPrefix
	}
	if c.CLI.DefaultLimit < 1 {
		c.CLI.DefaultLimit = def.CLI.DefaultLimit
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server limits and saves to file. Nil values are left
// untouched.
func (c *Config) Update(configPath string, maxResults, minPrefix, maxPrefix *int) error {
	server := &c.Server
	if maxResults != nil {
		server.MaxResults = *maxResults
	}
	if minPrefix != nil {
		server.MinPrefix = *minPrefix
	}
	if maxPrefix != nil {
		server.MaxPrefix = *maxPrefix
	}
	c.sanitize()
	return SaveConfig(c, configPath)
}
