// cmd/tarmirror/config.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
)

// Config holds the settings read from a config file. Pointer fields stay nil
// when the file does not set them.
type Config struct {
	IncludeHidden   *bool    `toml:"include_hidden"`
	ShowFiles       *bool    `toml:"show_files"`
	ShowCounts      *bool    `toml:"show_counts"`
	Compression     *string  `toml:"compression"`
	Verbose         *bool    `toml:"verbose"`
	Quiet           *bool    `toml:"quiet"`
	UseGitignore    *bool    `toml:"use_gitignore"`
	TarCommand      *string  `toml:"tar_command"`
	ExcludePatterns []string `toml:"exclude_patterns"`
}

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }

var defaultConfig = Config{
	IncludeHidden:   boolPtr(false),
	ShowFiles:       boolPtr(false),
	ShowCounts:      boolPtr(false),
	Compression:     stringPtr(defaultCompression),
	Verbose:         boolPtr(false),
	Quiet:           boolPtr(false),
	UseGitignore:    boolPtr(false),
	TarCommand:      stringPtr("tar"),
	ExcludePatterns: []string{},
}

// withDefaults fills every unset field from defaultConfig.
func (c Config) withDefaults() Config {
	if c.IncludeHidden == nil {
		c.IncludeHidden = defaultConfig.IncludeHidden
	}
	if c.ShowFiles == nil {
		c.ShowFiles = defaultConfig.ShowFiles
	}
	if c.ShowCounts == nil {
		c.ShowCounts = defaultConfig.ShowCounts
	}
	if c.Compression == nil {
		c.Compression = defaultConfig.Compression
	}
	if c.Verbose == nil {
		c.Verbose = defaultConfig.Verbose
	}
	if c.Quiet == nil {
		c.Quiet = defaultConfig.Quiet
	}
	if c.UseGitignore == nil {
		c.UseGitignore = defaultConfig.UseGitignore
	}
	if c.TarCommand == nil {
		c.TarCommand = defaultConfig.TarCommand
	}
	if c.ExcludePatterns == nil {
		c.ExcludePatterns = defaultConfig.ExcludePatterns
	}
	return c
}

// defaultConfigPath returns ~/.config/tarmirror/config.toml.
func defaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "tarmirror", "config.toml"), nil
}

// loadConfig reads customConfigPath, or the default location when it is
// empty. A missing default file yields the defaults; a missing custom file
// is an error.
func loadConfig(customConfigPath string) (Config, error) {
	isCustomPath := customConfigPath != ""
	configFile := customConfigPath

	if isCustomPath {
		absPath, err := filepath.Abs(customConfigPath)
		if err != nil {
			return defaultConfig, &ConfigError{Key: "config", Err: fmt.Errorf("invalid custom config path '%s': %w", customConfigPath, err)}
		}
		configFile = absPath
	} else {
		p, err := defaultConfigPath()
		if err != nil {
			slog.Warn("Could not determine user home directory. Using default settings only.", "error", err)
			return defaultConfig, nil
		}
		configFile = p
	}

	slog.Debug("Reading configuration file", "path", configFile)
	content, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !isCustomPath {
			slog.Debug("No default config file found, using default settings.", "path", configFile)
			return defaultConfig, nil
		}
		return defaultConfig, &ConfigError{Key: "config", Err: fmt.Errorf("error reading config file '%s': %w", configFile, err)}
	}

	if len(strings.TrimSpace(string(content))) == 0 {
		slog.Info("Configuration file is empty, using default settings.", "path", configFile)
		return defaultConfig, nil
	}

	var loadedCfg Config
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".ini", ".conf", ".cfg":
		loadedCfg, err = decodeINIConfig(content)
	default:
		loadedCfg, err = decodeTOMLConfig(content, configFile)
	}
	if err != nil {
		slog.Error("Error decoding config file, using default settings.", "path", configFile, "error", err)
		return defaultConfig, &ConfigError{Key: "config", Err: fmt.Errorf("error decoding '%s': %w", configFile, err)}
	}

	cfg := loadedCfg.withDefaults()
	slog.Debug("Configuration loaded successfully.",
		"source", configFile,
		"include_hidden", *cfg.IncludeHidden,
		"show_files", *cfg.ShowFiles,
		"show_counts", *cfg.ShowCounts,
		"compression", *cfg.Compression,
		"verbose", *cfg.Verbose,
		"quiet", *cfg.Quiet,
		"use_gitignore", *cfg.UseGitignore,
		"tar_command", *cfg.TarCommand,
		"exclude_patterns", cfg.ExcludePatterns,
	)
	return cfg, nil
}

func decodeTOMLConfig(content []byte, configFile string) (Config, error) {
	var cfg Config
	meta, err := toml.Decode(string(content), &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		slog.Warn("Unrecognized keys found in config file.", "path", configFile, "keys", undecoded)
	}
	return cfg, nil
}

// decodeINIConfig reads the same keys from the default section of an INI file.
func decodeINIConfig(content []byte) (Config, error) {
	file, err := ini.Load(content)
	if err != nil {
		return Config{}, err
	}
	section := file.Section("")

	var cfg Config
	boolKeys := map[string]**bool{
		"include_hidden": &cfg.IncludeHidden,
		"show_files":     &cfg.ShowFiles,
		"show_counts":    &cfg.ShowCounts,
		"verbose":        &cfg.Verbose,
		"quiet":          &cfg.Quiet,
		"use_gitignore":  &cfg.UseGitignore,
	}
	for _, name := range mapsKeys(boolKeys) {
		if !section.HasKey(name) {
			continue
		}
		value, errBool := section.Key(name).Bool()
		if errBool != nil {
			return Config{}, fmt.Errorf("key %s: %w", name, errBool)
		}
		*boolKeys[name] = boolPtr(value)
	}
	if section.HasKey("compression") {
		cfg.Compression = stringPtr(strings.TrimSpace(section.Key("compression").String()))
	}
	if section.HasKey("tar_command") {
		cfg.TarCommand = stringPtr(strings.TrimSpace(section.Key("tar_command").String()))
	}
	if section.HasKey("exclude_patterns") {
		cfg.ExcludePatterns = splitPatterns(section.Key("exclude_patterns").Strings(","))
	}
	return cfg, nil
}
