package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseTaskRef(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in       string
		wantID   string
		wantMode task.Mode
		wantErr  bool
	}{
		"bare id defaults to fix": {in: "format", wantID: "format", wantMode: task.ModeFix},
		"explicit check":          {in: "format:check", wantID: "format", wantMode: task.ModeCheck},
		"explicit fixOnly":        {in: "lint:fixOnly", wantID: "lint", wantMode: task.ModeFixOnly},
		"surrounding space":       {in: "  test : check ", wantID: "test", wantMode: task.ModeCheck},
		"invalid mode":            {in: "format:reformat", wantErr: true},
		"empty id":                {in: ":check", wantErr: true},
		"empty mode":              {in: "format:", wantErr: true},
		"empty string":            {in: "", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			id, mode, err := ParseTaskRef(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantMode, mode)
		})
	}
}

func TestTaskSpec_YAMLShorthand(t *testing.T) {
	t.Parallel()

	doc := `
- format
- format:check
- id: test
  mode: fixOnly
  depends_on: [format]
  continue_on_error: true
  options:
    race: true
`
	var specs []TaskSpec
	require.NoError(t, yaml.Unmarshal([]byte(doc), &specs))
	require.Len(t, specs, 3)

	assert.Equal(t, TaskSpec{ID: "format", Mode: task.ModeFix}, specs[0])
	assert.Empty(t, specs[0].DependsOn)
	assert.Equal(t, TaskSpec{ID: "format", Mode: task.ModeCheck}, specs[1])
	assert.Empty(t, specs[1].DependsOn)

	assert.Equal(t, "test", specs[2].ID)
	assert.Equal(t, task.ModeFixOnly, specs[2].Mode)
	assert.Equal(t, []string{"format"}, specs[2].DependsOn)
	assert.True(t, specs[2].ContinueOnError)
	assert.Equal(t, true, specs[2].Options["race"])
}

func TestStageTask_YAMLInvalidShorthand(t *testing.T) {
	t.Parallel()

	var tasks []StageTask
	err := yaml.Unmarshal([]byte(`["lint:sometimes"]`), &tasks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid task mode")
}

func TestLoadBytes_Shorthand(t *testing.T) {
	t.Parallel()

	cfg, err := LoadBytes([]byte(`
hooks:
  pre-push:
    tasks:
      - format
      - format-check:check
      - id: test
        mode: check
        depends_on: [format]
        blocking: false
  pre-commit:
    stages:
      - name: quick
        parallel: true
        tasks: ["lint:check", {id: fmt, options: {width: 100}}]
`))
	require.NoError(t, err)

	push := cfg.ForHook(task.HookPrePush)
	require.Len(t, push.Tasks, 3)
	assert.Equal(t, task.ModeFix, push.Tasks[0].Mode)
	assert.Empty(t, push.Tasks[0].DependsOn)
	assert.Equal(t, "format-check", push.Tasks[1].ID)
	assert.Equal(t, task.ModeCheck, push.Tasks[1].Mode)
	require.NotNil(t, push.Tasks[2].Blocking)
	assert.False(t, *push.Tasks[2].Blocking)
	assert.Equal(t, []string{"format"}, push.Tasks[2].DependsOn)
	assert.False(t, push.UsesStages())

	commit := cfg.ForHook(task.HookPreCommit)
	require.True(t, commit.UsesStages())
	require.Len(t, commit.Stages, 1)
	stage := commit.Stages[0]
	assert.True(t, stage.Parallel)
	require.Len(t, stage.Tasks, 2)
	assert.Equal(t, StageTask{ID: "lint", Mode: task.ModeCheck}, stage.Tasks[0])
	assert.Equal(t, "fmt", stage.Tasks[1].ID)
	assert.Equal(t, task.ModeFix, stage.Tasks[1].Mode, "object form without mode defaults to fix")
	assert.EqualValues(t, 100, stage.Tasks[1].Options["width"])
}

func TestLoadBytes_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadBytes(nil)
	require.NoError(t, err)

	assert.Equal(t, task.FixSafe, cfg.FixMode)
	assert.Equal(t, task.ScopeStaged, cfg.FileScope)
	assert.Equal(t, "main", cfg.BaseBranch)
	assert.True(t, cfg.Restage)

	for _, hook := range task.AllHooks() {
		s := cfg.ForHook(hook)
		assert.True(t, s.Enabled, "hook %s enabled by default", hook)
		assert.True(t, len(s.Stages) > 0 || len(s.Tasks) > 0, "hook %s has a built-in pipeline", hook)
	}
	assert.True(t, cfg.ForHook(task.HookCI).CI, "ci hook is always CI-like")
}

func TestLoadBytes_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		yaml    string
		wantMsg string
	}{
		"invalid fix mode": {
			yaml:    "fix_mode: sometimes\n",
			wantMsg: "fix_mode",
		},
		"invalid hook name": {
			yaml:    "hooks:\n  post-merge:\n    enabled: true\n",
			wantMsg: "post-merge",
		},
		"invalid task mode object form": {
			yaml:    "hooks:\n  ci:\n    tasks:\n      - id: lint\n        mode: later\n",
			wantMsg: "mode",
		},
		"invalid task mode shorthand": {
			yaml:    "hooks:\n  ci:\n    tasks: [\"lint:later\"]\n",
			wantMsg: "invalid task mode",
		},
		"stage without tasks": {
			yaml:    "hooks:\n  ci:\n    stages:\n      - name: empty\n",
			wantMsg: "tasks",
		},
		"custom task without command": {
			yaml:    "custom_tasks:\n  - id: vet\n",
			wantMsg: "command",
		},
		"yaml syntax": {
			yaml:    "fix_mode: [safe\n",
			wantMsg: "<bytes>",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadBytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadBytes_ValidationErrorType(t *testing.T) {
	t.Parallel()

	_, err := LoadBytes([]byte("file_scope: everything\n"))
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "file_scope", vErr.Field)
}

func TestForHook_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := LoadBytes([]byte(`
fix_mode: cautious
file_scope: staged
fail_fast: false
hooks:
  pre-push:
    file_scope: changed
    fix_mode: none
    fail_fast: true
    parallel: false
    tasks: [lint]
`))
	require.NoError(t, err)

	push := cfg.ForHook(task.HookPrePush)
	assert.Equal(t, task.ScopeChanged, push.FileScope)
	assert.Equal(t, task.FixNone, push.FixMode)
	assert.True(t, push.FailFast)
	assert.False(t, push.Parallel)

	commit := cfg.ForHook(task.HookPreCommit)
	assert.Equal(t, task.ScopeStaged, commit.FileScope)
	assert.Equal(t, task.FixCautious, commit.FixMode)
	assert.False(t, commit.FailFast)
	assert.True(t, commit.Parallel)
}

func TestLoadBytes_DisabledHook(t *testing.T) {
	t.Parallel()

	cfg, err := LoadBytes([]byte("hooks:\n  pre-push:\n    enabled: false\n"))
	require.NoError(t, err)
	assert.False(t, cfg.ForHook(task.HookPrePush).Enabled)
	assert.True(t, cfg.ForHook(task.HookPreCommit).Enabled)
}

func TestLoadBytes_CustomTasks(t *testing.T) {
	t.Parallel()

	cfg, err := LoadBytes([]byte(`
custom_tasks:
  - id: go-vet
    name: Go vet
    command: go vet ./...
    fix_safety: cautious
    blocking: false
    hooks: [pre-push, ci]
    patterns: ["*.go"]
    pass_files: true
`))
	require.NoError(t, err)
	require.Len(t, cfg.CustomTasks, 1)

	ct := cfg.CustomTasks[0]
	assert.Equal(t, "go-vet", ct.ID)
	assert.Equal(t, task.SafetyCautious, ct.FixSafety)
	require.NotNil(t, ct.Blocking)
	assert.False(t, *ct.Blocking)
	assert.Equal(t, []string{"pre-push", "ci"}, ct.Hooks)
	assert.True(t, ct.PassFiles)
}

func TestLoadWithOptions_ProjectFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("fix_mode: all\nbase_branch: develop\n"), 0o644))

	t.Setenv("GATEHOOK_BASE_BRANCH", "trunk")
	t.Setenv("CI", "")

	cfg, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path, SkipUserConfig: true})
	require.NoError(t, err)

	assert.Equal(t, task.FixAll, cfg.FixMode, "project file overrides defaults")
	assert.Equal(t, "trunk", cfg.BaseBranch, "environment overrides project file")
	assert.False(t, cfg.CI)
}

func TestLoadWithOptions_CIEnv(t *testing.T) {
	t.Setenv("CI", "true")

	cfg, err := LoadWithOptions(LoadOptions{
		ProjectConfigPath: writeConfig(t, "config.yml", "restage: false\n"),
		SkipUserConfig:    true,
	})
	require.NoError(t, err)
	assert.True(t, cfg.CI)
	assert.False(t, cfg.Restage)
}

func TestLoadWithOptions_CIEnvFalse(t *testing.T) {
	t.Setenv("CI", "false")

	cfg, err := LoadWithOptions(LoadOptions{
		ProjectConfigPath: writeConfig(t, "config.yml", "restage: true\n"),
		SkipUserConfig:    true,
	})
	require.NoError(t, err)
	assert.False(t, cfg.CI)
	assert.True(t, cfg.Restage)
}

func TestCIEnv(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		value string
		want  bool
	}{
		"unset":         {value: "", want: false},
		"true":          {value: "true", want: true},
		"one":           {value: "1", want: true},
		"false":         {value: "false", want: false},
		"zero":          {value: "0", want: false},
		"provider name": {value: "woodpecker", want: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ciEnv(tt.value))
		})
	}
}

func TestLoadWithOptions_JSON(t *testing.T) {
	t.Setenv("CI", "")

	path := writeConfig(t, "config.json", `{"fix_mode": "none", "hooks": {"ci": {"tasks": ["lint:check"]}}}`)
	cfg, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path, SkipUserConfig: true})
	require.NoError(t, err)

	assert.Equal(t, task.FixNone, cfg.FixMode)
	ci := cfg.ForHook(task.HookCI)
	require.Len(t, ci.Tasks, 1)
	assert.Equal(t, TaskSpec{ID: "lint", Mode: task.ModeCheck}, ci.Tasks[0])
}

func TestLoadWithOptions_MissingCustomPath(t *testing.T) {
	_, err := LoadWithOptions(LoadOptions{
		ProjectConfigPath: filepath.Join(t.TempDir(), "nope.yml"),
		SkipUserConfig:    true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDefaultConfigTemplate_Loads(t *testing.T) {
	t.Parallel()

	cfg, err := LoadBytes([]byte(GetDefaultConfigTemplate()))
	require.NoError(t, err)
	assert.Len(t, cfg.ForHook(task.HookPreCommit).Stages, 2)
	assert.Len(t, cfg.ForHook(task.HookPrePush).Tasks, 2)
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBytes_ReportsEveryProblem(t *testing.T) {
	t.Parallel()

	_, err := LoadBytes([]byte("fix_mode: sometimes\nhistory_limit: -1\nhooks:\n  ci:\n    stages:\n      - name: lint\n        tasks: [{mode: fix}]\n"))
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "fix_mode", vErr.Field)
	assert.Contains(t, vErr.Message, "must be one of [none safe cautious all]")
	assert.Contains(t, vErr.Problems, "history_limit must be 0 or more, got -1")
	assert.Contains(t, vErr.Problems, "hooks[ci].stages[0].tasks[0].id is required")
	assert.Contains(t, err.Error(), "; ")
}

func TestLoadBytes_SyntaxErrorLine(t *testing.T) {
	t.Parallel()

	_, err := LoadBytes([]byte("fix_mode: safe\nhooks:\n\tci: {}\n"))
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Positive(t, vErr.Line)
	assert.NotContains(t, vErr.Message, "yaml: line")
	assert.True(t, strings.HasPrefix(err.Error(), fmt.Sprintf("<bytes>:%d: ", vErr.Line)))
}
