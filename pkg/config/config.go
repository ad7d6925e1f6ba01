/*
Package config manages TOML config for PickServe services.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/pickserve/internal/utils"
	"github.com/charmbracelet/log"
)

const appDir = "pickserve"

// Config holds the entire config structure
type Config struct {
	Resolver ResolverConfig `toml:"resolver"`
	Server   ServerConfig   `toml:"server"`
	CLI      CliConfig      `toml:"cli"`
}

// ResolverConfig has suggestion resolver options.
type ResolverConfig struct {
	DelayMs  int    `toml:"delay_ms"`
	DataFile string `toml:"data_file"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxQuery    int `toml:"max_query"`
	MaxSelected int `toml:"max_selected"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// Delay returns the resolver delay as a duration.
func (r ResolverConfig) Delay() time.Duration {
	return time.Duration(r.DelayMs) * time.Millisecond
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", appDir)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		primaryPath = filepath.Join(xdg, appDir)
	}
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", appDir)
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/pickserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
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

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Resolver: ResolverConfig{
			DelayMs:  150,
			DataFile: "",
		},
		Server: ServerConfig{
			MaxQuery:    60,
			MaxSelected: 256,
		},
		CLI: CliConfig{
			DefaultLimit: 10,
		},
	}
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

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse recovers whatever sections still decode.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "resolver"); ok {
		extractResolverConfig(section, &config.Resolver)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	config.sanitize()
	return config, nil
}

func extractResolverConfig(data map[string]any, resolver *ResolverConfig) {
	if val, ok := utils.ExtractInt64(data, "delay_ms"); ok {
		resolver.DelayMs = val
	}
	if val, ok := utils.ExtractString(data, "data_file"); ok {
		resolver.DataFile = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_query"); ok {
		server.MaxQuery = val
	}
	if val, ok := utils.ExtractInt64(data, "max_selected"); ok {
		server.MaxSelected = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
}

// sanitize resets out-of-range values to their defaults.
func (c *Config) sanitize() {
	defaults := DefaultConfig()
	if c.Resolver.DelayMs < 0 {
		log.Warnf("Negative resolver.delay_ms %d, using %d", c.Resolver.DelayMs, defaults.Resolver.DelayMs)
		c.Resolver.DelayMs = defaults.Resolver.DelayMs
	}
	if c.Server.MaxQuery < 1 {
		c.Server.MaxQuery = defaults.Server.MaxQuery
	}
	if c.Server.MaxSelected < 0 {
		c.Server.MaxSelected = defaults.Server.MaxSelected
	}
	if c.CLI.DefaultLimit < 1 {
		c.CLI.DefaultLimit = defaults.CLI.DefaultLimit
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

// Update changes the config values and saves to file
func (c *Config) Update(configPath string, delayMs, maxQuery *int, dataFile *string) error {
	if delayMs != nil {
		c.Resolver.DelayMs = *delayMs
	}
	if maxQuery != nil {
		c.Server.MaxQuery = *maxQuery
	}
	if dataFile != nil {
		c.Resolver.DataFile = *dataFile
	}
	c.sanitize()
	return SaveConfig(c, configPath)
}
