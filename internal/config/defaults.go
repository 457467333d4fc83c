package config

import "github.com/ariel-frischer/gatehook/internal/task"

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# gatehook configuration
# See 'gatehook tasks' for registered task ids.

fix_mode: safe                        # Auto-fix policy: none | safe | cautious | all
file_scope: staged                    # Files considered: staged | changed | diff | all
base_branch: main                     # Reference for the 'changed' scope
fail_fast: false                      # Stop a sequential stage after a blocking failure
restage: true                         # Re-add fixed files to the index
log_level: warn                       # debug | info | warn | error
log_format: console                   # console | json
metrics_file: ""                      # Prometheus textfile written after each run
history_limit: 100                    # Runs kept for 'gatehook history' (0 disables)

hooks:
  pre-commit:
    enabled: true
    stages:
      - name: hygiene
        tasks: ["merge-conflict:check", "large-files:check"]
      - name: format
        parallel: true
        depends_on: [hygiene]
        tasks: [trailing-whitespace, end-of-file, gofmt]
  pre-push:
    enabled: true
    file_scope: changed
    tasks:
      - "merge-conflict:check"
      - id: gofmt
        mode: check
        depends_on: [merge-conflict]
  ci:
    enabled: true
    file_scope: all
    fix_mode: none

# User-defined shell tasks
custom_tasks: []
#  - id: go-vet
#    command: go vet ./...
#    hooks: [pre-push, ci]
#    patterns: ["*.go"]
#    blocking: true
`
}

// GetDefaults returns the default configuration values as flat koanf keys.
// Hook pipelines are not part of these defaults; see DefaultHooks.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"fix_mode":                 string(task.FixSafe),
		"file_scope":               string(task.ScopeStaged),
		"base_branch":              "main",
		"fail_fast":                false,
		"restage":                  true,
		"ci":                       false,
		"log_level":                "warn",
		"log_format":               "console",
		"metrics_file":             "",
		"history_limit":            100,
		"hooks.pre-commit.enabled": true,
		"hooks.pre-push.enabled":   true,
		"hooks.ci.enabled":         true,
	}
}

// DefaultHooks returns the built-in pipelines used for hooks that configure
// neither stages nor tasks.
func DefaultHooks() map[task.HookType]HookConfig {
	return map[task.HookType]HookConfig{
		task.HookPreCommit: {
			Enabled: true,
			Stages: []HookStage{
				{
					Name: "hygiene",
					Tasks: []StageTask{
						{ID: "merge-conflict", Mode: task.ModeCheck},
						{ID: "large-files", Mode: task.ModeCheck},
					},
				},
				{
					Name:      "format",
					Parallel:  true,
					DependsOn: []string{"hygiene"},
					Tasks: []StageTask{
						{ID: "trailing-whitespace", Mode: task.ModeFix},
						{ID: "end-of-file", Mode: task.ModeFix},
						{ID: "gofmt", Mode: task.ModeFix},
					},
				},
			},
		},
		task.HookPrePush: {
			Enabled: true,
			Tasks: []TaskSpec{
				{ID: "merge-conflict", Mode: task.ModeCheck},
				{ID: "gofmt", Mode: task.ModeCheck, DependsOn: []string{"merge-conflict"}},
			},
		},
		task.HookCI: {
			Enabled: true,
			Stages: []HookStage{
				{
					Name:     "checks",
					Parallel: true,
					Tasks: []StageTask{
						{ID: "merge-conflict", Mode: task.ModeCheck},
						{ID: "large-files", Mode: task.ModeCheck},
						{ID: "trailing-whitespace", Mode: task.ModeCheck},
						{ID: "end-of-file", Mode: task.ModeCheck},
						{ID: "gofmt", Mode: task.ModeCheck},
					},
				},
			},
		},
	}
}
