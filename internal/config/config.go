// Package config loads the project layout using Viper for flexible
// configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration supports YAML files, environment variable overrides with
// the BUNDLECFG_ prefix, defaults matching the standard project layout, and
// path validation. The build mode itself is not part of the file: it is read
// once from the environment variable named by mode_env.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/conneroisu/bundlecfg/internal/derive"
	"github.com/conneroisu/bundlecfg/internal/mode"
)

type Config struct {
	Root          string            `yaml:"root" mapstructure:"root"`
	Context       string            `yaml:"context" mapstructure:"context"`
	Output        string            `yaml:"output" mapstructure:"output"`
	Entry         string            `yaml:"entry" mapstructure:"entry"`
	Index         string            `yaml:"index" mapstructure:"index"`
	Templates     TemplatesConfig   `yaml:"templates" mapstructure:"templates"`
	PostCSSConfig string            `yaml:"postcss_config" mapstructure:"postcss_config"`
	DevServer     DevServerConfig   `yaml:"dev_server" mapstructure:"dev_server"`
	Copy          []derive.CopySpec `yaml:"copy" mapstructure:"copy"`
	ModeEnv       string            `yaml:"mode_env" mapstructure:"mode_env"`
	Log           LogConfig         `yaml:"log" mapstructure:"log"`
}

type TemplatesConfig struct {
	Dir             string `yaml:"dir" mapstructure:"dir"`
	Extension       string `yaml:"extension" mapstructure:"extension"`
	OutputExtension string `yaml:"output_extension" mapstructure:"output_extension"`
}

type DevServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

func Load() (*Config, error) {
	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	defaults := derive.DefaultLayout(".")

	if config.Root == "" {
		config.Root = "."
	}
	if config.Context == "" {
		config.Context = defaults.Context
	}
	if config.Output == "" {
		config.Output = defaults.Output
	}
	if config.Entry == "" {
		config.Entry = defaults.Entry
	}
	if config.Index == "" {
		config.Index = defaults.Index
	}
	if config.Templates.Dir == "" {
		config.Templates.Dir = defaults.TemplatesDir
	}
	if config.Templates.Extension == "" {
		config.Templates.Extension = defaults.TemplateExtension
	}
	if config.Templates.OutputExtension == "" {
		config.Templates.OutputExtension = defaults.OutputExtension
	}
	if config.PostCSSConfig == "" {
		config.PostCSSConfig = defaults.PostCSSConfig
	}
	if config.DevServer.Port == 0 {
		config.DevServer.Port = defaults.DevServerPort
	}
	// An explicit empty list disables copying; only a missing key gets the
	// default rules.
	if !viper.IsSet("copy") && len(config.Copy) == 0 {
		config.Copy = defaults.Copy
	}
	if config.ModeEnv == "" {
		config.ModeEnv = mode.DefaultEnvVar
	}
	if config.Log.Level == "" {
		config.Log.Level = viper.GetString("log-level")
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	config.Templates.Extension = dotted(config.Templates.Extension)
	config.Templates.OutputExtension = dotted(config.Templates.OutputExtension)

	// Validate configuration values
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	root, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", config.Root, err)
	}
	config.Root = root

	return &config, nil
}

// setDefaults registers every key with viper. Unmarshal only consults the
// environment for keys viper knows about, so without this BUNDLECFG_*
// overrides of keys absent from the config file are ignored. copy has no
// default so an explicit empty list stays distinguishable from a missing key.
func setDefaults() {
	defaults := derive.DefaultLayout(".")

	viper.SetDefault("root", defaults.Root)
	viper.SetDefault("context", defaults.Context)
	viper.SetDefault("output", defaults.Output)
	viper.SetDefault("entry", defaults.Entry)
	viper.SetDefault("index", defaults.Index)
	viper.SetDefault("templates.dir", defaults.TemplatesDir)
	viper.SetDefault("templates.extension", defaults.TemplateExtension)
	viper.SetDefault("templates.output_extension", defaults.OutputExtension)
	viper.SetDefault("postcss_config", defaults.PostCSSConfig)
	viper.SetDefault("dev_server.port", defaults.DevServerPort)
	viper.SetDefault("mode_env", mode.DefaultEnvVar)
	viper.SetDefault("log.level", "")
	viper.SetDefault("log.format", "text")
}

// Layout converts the loaded configuration into the derivation input.
func (c *Config) Layout() derive.Layout {
	copySpecs := make([]derive.CopySpec, len(c.Copy))
	copy(copySpecs, c.Copy)

	return derive.Layout{
		Root:              c.Root,
		Context:           c.Context,
		Output:            c.Output,
		Entry:             c.Entry,
		Index:             c.Index,
		TemplatesDir:      c.Templates.Dir,
		TemplateExtension: c.Templates.Extension,
		OutputExtension:   c.Templates.OutputExtension,
		PostCSSConfig:     c.PostCSSConfig,
		DevServerPort:     c.DevServer.Port,
		Copy:              copySpecs,
	}
}

func dotted(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if config.DevServer.Port < 1 || config.DevServer.Port > 65535 {
		return fmt.Errorf("dev_server.port %d is not in valid range 1-65535", config.DevServer.Port)
	}

	if err := validateRoot(config.Root); err != nil {
		return fmt.Errorf("invalid root '%s': %w", config.Root, err)
	}

	paths := map[string]string{
		"context":        config.Context,
		"output":         config.Output,
		"entry":          config.Entry,
		"index":          config.Index,
		"templates.dir":  config.Templates.Dir,
		"postcss_config": config.PostCSSConfig,
	}
	for field, path := range paths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid %s '%s': %w", field, path, err)
		}
	}

	for i, spec := range config.Copy {
		if err := validatePath(spec.From); err != nil {
			return fmt.Errorf("invalid copy[%d].from '%s': %w", i, spec.From, err)
		}
		if err := validatePath(spec.To); err != nil {
			return fmt.Errorf("invalid copy[%d].to '%s': %w", i, spec.To, err)
		}
	}

	if strings.ContainsAny(config.Templates.Extension, `/\`) || config.Templates.Extension == "." {
		return fmt.Errorf("invalid templates.extension '%s'", config.Templates.Extension)
	}
	if strings.ContainsAny(config.Templates.OutputExtension, `/\`) || config.Templates.OutputExtension == "." {
		return fmt.Errorf("invalid templates.output_extension '%s'", config.Templates.OutputExtension)
	}

	if config.ModeEnv != "" && strings.ContainsAny(config.ModeEnv, "= \t\n") {
		return fmt.Errorf("invalid mode_env '%s'", config.ModeEnv)
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got '%s'", config.Log.Format)
	}

	return nil
}

var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}

// validateRoot allows absolute and parent paths but rejects shell
// metacharacters.
func validateRoot(path string) error {
	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}
	return nil
}

// validatePath validates a project-relative file path
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	// Clean the path
	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if cleanPath == ".." || strings.HasPrefix(cleanPath, "../") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
