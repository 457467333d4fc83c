// Package config provides hierarchical configuration management for gatehook using koanf.
// Configuration is loaded with priority: environment variables > project config (.gatehook/config.yml)
// > user config (~/.config/gatehook/config.yml) > defaults. The project config may also be
// written as JSON (.gatehook/config.json); YAML wins when both exist.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "GATEHOOK_"

// Configuration represents the gatehook configuration.
type Configuration struct {
	// FixMode decides which fix safety levels may be auto-applied.
	FixMode task.FixMode `koanf:"fix_mode" validate:"oneof=none safe cautious all"`
	// FileScope selects the files a run considers.
	FileScope task.FileScope `koanf:"file_scope" validate:"oneof=staged changed diff all"`
	// BaseBranch is the reference the "changed" scope diffs against.
	BaseBranch string `koanf:"base_branch" validate:"required"`
	// FailFast stops a sequential stage after its first blocking failure.
	FailFast bool `koanf:"fail_fast"`
	// Restage re-adds fix-modified files to the index after a run.
	Restage bool `koanf:"restage"`
	// CI marks a CI-like run. Also forced on by a non-empty CI env var.
	CI bool `koanf:"ci"`

	LogLevel  string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `koanf:"log_format" validate:"oneof=console json"`
	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`
	// HistoryLimit caps the recorded run history. Zero disables recording.
	HistoryLimit int `koanf:"history_limit" validate:"gte=0"`

	Hooks       map[string]HookConfig `koanf:"hooks" validate:"dive,keys,oneof=pre-commit pre-push ci,endkeys"`
	CustomTasks []CustomTask          `koanf:"custom_tasks" validate:"dive"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .gatehook/config.yml)
	ProjectConfigPath string
	// SkipUserConfig ignores the user-level config file.
	SkipUserConfig bool
	// WarningWriter receives warnings (default: os.Stderr)
	WarningWriter io.Writer
}

// Load loads configuration from user, project, and environment sources.
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := opts.WarningWriter
	if warningWriter == nil {
		warningWriter = os.Stderr
	}

	loadDefaults(k)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath, warningWriter); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// LoadBytes parses a YAML document on top of the defaults. GATEHOOK_
// environment variables are not consulted.
func LoadBytes(data []byte) (*Configuration, error) {
	if err := validateYAMLSyntax(data, "<bytes>"); err != nil {
		return nil, err
	}
	k := koanf.New(".")
	loadDefaults(k)
	if len(bytes.TrimSpace(data)) > 0 {
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	return finalizeConfig(k)
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level YAML config when present.
func loadUserConfig(k *koanf.Koanf) error {
	userPath, err := UserConfigPath()
	if err != nil || !fileExists(userPath) {
		return nil
	}
	if err := loadYAMLConfig(k, userPath, "user"); err != nil {
		return fmt.Errorf("loading user config: %w", err)
	}
	return nil
}

// loadProjectConfig loads the project-level config. YAML is preferred; a JSON
// file is used only when no YAML file exists.
func loadProjectConfig(k *koanf.Koanf, customPath string, warningWriter io.Writer) error {
	yamlPath := ProjectConfigPath()
	if customPath != "" {
		if strings.HasSuffix(customPath, ".json") {
			return loadJSONConfig(k, customPath, "project")
		}
		yamlPath = customPath
	}
	jsonPath := ProjectJSONConfigPath()

	switch {
	case fileExists(yamlPath):
		if err := loadYAMLConfig(k, yamlPath, "project"); err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		if customPath == "" && fileExists(jsonPath) {
			fmt.Fprintf(warningWriter, "Warning: %s ignored, using %s\n", jsonPath, yamlPath)
		}
	case customPath == "" && fileExists(jsonPath):
		if err := loadJSONConfig(k, jsonPath, "project"); err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
	case customPath != "":
		return fmt.Errorf("config file not found: %s", customPath)
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s config: %w", configType, err)
	}
	if err := validateYAMLSyntax(data, path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadJSONConfig loads a JSON config file
func loadJSONConfig(k *koanf.Koanf, path, configType string) error {
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, normalizes and validates the merged configuration.
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.normalize()

	if ciEnv(os.Getenv("CI")) {
		cfg.CI = true
	}

	return &cfg, nil
}

// normalize fills defaulted fields that koanf defaults cannot express, such
// as task modes inside lists and built-in pipelines for unconfigured hooks.
func (c *Configuration) normalize() {
	if c.Hooks == nil {
		c.Hooks = make(map[string]HookConfig)
	}
	defaults := DefaultHooks()
	for _, hook := range task.AllHooks() {
		hc := c.Hooks[string(hook)]
		if len(hc.Stages) == 0 && len(hc.Tasks) == 0 {
			def := defaults[hook]
			hc.Stages = def.Stages
			hc.Tasks = def.Tasks
		}
		for i := range hc.Tasks {
			if hc.Tasks[i].Mode == "" {
				hc.Tasks[i].Mode = task.ModeFix
			}
		}
		for i := range hc.Stages {
			for j := range hc.Stages[i].Tasks {
				if hc.Stages[i].Tasks[j].Mode == "" {
					hc.Stages[i].Tasks[j].Mode = task.ModeFix
				}
			}
		}
		c.Hooks[string(hook)] = hc
	}
}

// HookSettings is the effective configuration of one hook type.
type HookSettings struct {
	Hook      task.HookType
	Enabled   bool
	FileScope task.FileScope
	FixMode   task.FixMode
	FailFast  bool
	Parallel  bool
	Restage   bool
	CI        bool
	BaseRef   string
	Tasks     []TaskSpec
	Stages    []HookStage
}

// UsesStages reports whether the hook runs a stage pipeline rather than a flat task list.
func (s HookSettings) UsesStages() bool {
	return len(s.Stages) > 0
}

// ForHook resolves the effective settings of a hook, applying top-level
// fallbacks for unset per-hook values.
func (c *Configuration) ForHook(hook task.HookType) HookSettings {
	hc := c.Hooks[string(hook)]
	s := HookSettings{
		Hook:      hook,
		Enabled:   hc.Enabled,
		FileScope: c.FileScope,
		FixMode:   c.FixMode,
		FailFast:  c.FailFast,
		Parallel:  true,
		Restage:   c.Restage,
		CI:        c.CI || hook == task.HookCI,
		BaseRef:   c.BaseBranch,
		Tasks:     hc.Tasks,
		Stages:    hc.Stages,
	}
	if hc.FileScope != "" {
		s.FileScope = hc.FileScope
	}
	if hc.FixMode != "" {
		s.FixMode = hc.FixMode
	}
	if hc.FailFast != nil {
		s.FailFast = *hc.FailFast
	}
	if hc.Parallel != nil {
		s.Parallel = *hc.Parallel
	}
	return s
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: GATEHOOK_FIX_MODE -> fix_mode
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// ciEnv interprets the CI environment variable. Values that are not booleans,
// such as a provider name, count as set.
func ciEnv(v string) bool {
	if v == "" {
		return false
	}
	set, err := strconv.ParseBool(v)
	return err != nil || set
}
