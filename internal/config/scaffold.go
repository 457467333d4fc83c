package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ScaffoldResult describes the outcome of writing a project config.
type ScaffoldResult struct {
	SourcePath string
	TargetPath string
	Written    bool
	DryRun     bool
	Message    string
}

// WriteTemplate writes the commented default config to path. An existing
// file is kept unless force is set.
func WriteTemplate(fs afero.Fs, path string, force bool) (*ScaffoldResult, error) {
	result := &ScaffoldResult{TargetPath: path}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	if exists && !force {
		result.Message = fmt.Sprintf("%s already exists (use --force to overwrite)", path)
		return result, nil
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, []byte(GetDefaultConfigTemplate()), 0o644); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	result.Written = true
	result.Message = fmt.Sprintf("Created %s", path)
	return result, nil
}

// ConvertJSONConfig rewrites a JSON project config as YAML. The YAML target
// is never overwritten. The converted document must load cleanly.
func ConvertJSONConfig(fs afero.Fs, jsonPath, yamlPath string, dryRun bool) (*ScaffoldResult, error) {
	result := &ScaffoldResult{
		SourcePath: jsonPath,
		TargetPath: yamlPath,
		DryRun:     dryRun,
	}

	jsonData, err := afero.ReadFile(fs, jsonPath)
	if err != nil {
		exists, _ := afero.Exists(fs, jsonPath)
		if !exists {
			result.Message = fmt.Sprintf("No JSON config found at %s", jsonPath)
			return result, nil
		}
		return nil, fmt.Errorf("reading JSON config: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("parsing JSON config: %w", err)
	}

	if exists, _ := afero.Exists(fs, yamlPath); exists {
		result.Message = fmt.Sprintf("YAML config already exists at %s (skipped)", yamlPath)
		return result, nil
	}

	yamlData, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting to YAML: %w", err)
	}
	if _, err := LoadBytes(yamlData); err != nil {
		return nil, fmt.Errorf("converted config is invalid: %w", err)
	}

	if dryRun {
		result.Message = fmt.Sprintf("Would convert %s -> %s", jsonPath, yamlPath)
		return result, nil
	}

	if err := fs.MkdirAll(filepath.Dir(yamlPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	header := "# gatehook configuration\n# Converted from " + filepath.Base(jsonPath) + "\n\n"
	if err := afero.WriteFile(fs, yamlPath, append([]byte(header), yamlData...), 0o644); err != nil {
		return nil, fmt.Errorf("writing YAML config: %w", err)
	}

	result.Written = true
	result.Message = fmt.Sprintf("Converted %s -> %s", jsonPath, yamlPath)
	return result, nil
}
