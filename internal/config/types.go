package config

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/gatehook/internal/task"
	"gopkg.in/yaml.v3"
)

// TaskSpec configures one task of a hook's flat task list.
// It decodes from the object form or from the shorthand "id" / "id:mode".
type TaskSpec struct {
	ID        string         `koanf:"id" yaml:"id" validate:"required"`
	Mode      task.Mode      `koanf:"mode" yaml:"mode" validate:"omitempty,oneof=check fix fixOnly"`
	DependsOn []string       `koanf:"depends_on" yaml:"depends_on"`
	Options   map[string]any `koanf:"options" yaml:"options"`
	// Blocking overrides the task's default blocking behavior when set.
	Blocking *bool `koanf:"blocking" yaml:"blocking"`
	// ContinueOnError lets dependents run even when this task fails.
	ContinueOnError bool `koanf:"continue_on_error" yaml:"continue_on_error"`
}

// NodeID returns the task identifier.
func (s TaskSpec) NodeID() string { return s.ID }

// NodeDeps returns the prerequisite task identifiers.
func (s TaskSpec) NodeDeps() []string { return s.DependsOn }

// UnmarshalText decodes the shorthand form.
func (s *TaskSpec) UnmarshalText(text []byte) error {
	id, mode, err := ParseTaskRef(string(text))
	if err != nil {
		return err
	}
	*s = TaskSpec{ID: id, Mode: mode}
	return nil
}

// UnmarshalYAML accepts either a scalar shorthand or a mapping.
func (s *TaskSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return s.UnmarshalText([]byte(node.Value))
	}
	type plain TaskSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = TaskSpec(p)
	return nil
}

// StageTask references a task from within a stage.
type StageTask struct {
	ID       string         `koanf:"id" yaml:"id" validate:"required"`
	Mode     task.Mode      `koanf:"mode" yaml:"mode" validate:"omitempty,oneof=check fix fixOnly"`
	Options  map[string]any `koanf:"options" yaml:"options"`
	Blocking *bool          `koanf:"blocking" yaml:"blocking"`
}

// UnmarshalText decodes the shorthand form.
func (s *StageTask) UnmarshalText(text []byte) error {
	id, mode, err := ParseTaskRef(string(text))
	if err != nil {
		return err
	}
	*s = StageTask{ID: id, Mode: mode}
	return nil
}

// UnmarshalYAML accepts either a scalar shorthand or a mapping.
func (s *StageTask) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return s.UnmarshalText([]byte(node.Value))
	}
	type plain StageTask
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = StageTask(p)
	return nil
}

// HookStage is a named group of tasks sharing an execution policy.
type HookStage struct {
	Name      string      `koanf:"name" yaml:"name" validate:"required"`
	Tasks     []StageTask `koanf:"tasks" yaml:"tasks" validate:"required,min=1,dive"`
	Parallel  bool        `koanf:"parallel" yaml:"parallel"`
	DependsOn []string    `koanf:"depends_on" yaml:"depends_on"`
	// ContinueOnError lets this stage start even if a dependency failed.
	ContinueOnError bool `koanf:"continue_on_error" yaml:"continue_on_error"`
}

// NodeID returns the stage name.
func (s HookStage) NodeID() string { return s.Name }

// NodeDeps returns the prerequisite stage names.
func (s HookStage) NodeDeps() []string { return s.DependsOn }

// HookConfig configures one hook type. Empty scope/fix-mode and nil
// fail-fast fall back to the top-level settings.
type HookConfig struct {
	Enabled   bool           `koanf:"enabled" yaml:"enabled"`
	FileScope task.FileScope `koanf:"file_scope" yaml:"file_scope" validate:"omitempty,oneof=staged changed diff all"`
	FixMode   task.FixMode   `koanf:"fix_mode" yaml:"fix_mode" validate:"omitempty,oneof=none safe cautious all"`
	FailFast  *bool          `koanf:"fail_fast" yaml:"fail_fast"`
	// Parallel applies to the flat task list only. Default true.
	Parallel *bool       `koanf:"parallel" yaml:"parallel"`
	Tasks    []TaskSpec  `koanf:"tasks" yaml:"tasks" validate:"dive"`
	Stages   []HookStage `koanf:"stages" yaml:"stages" validate:"dive"`
}

// CustomTask declares a user-defined shell task.
type CustomTask struct {
	ID         string         `koanf:"id" yaml:"id" validate:"required"`
	Name       string         `koanf:"name" yaml:"name"`
	Command    string         `koanf:"command" yaml:"command" validate:"required"`
	FixCommand string         `koanf:"fix_command" yaml:"fix_command"`
	FixSafety  task.FixSafety `koanf:"fix_safety" yaml:"fix_safety" validate:"omitempty,oneof=safe cautious unsafe"`
	// Blocking defaults to true when unset.
	Blocking *bool    `koanf:"blocking" yaml:"blocking"`
	Hooks    []string `koanf:"hooks" yaml:"hooks" validate:"dive,oneof=pre-commit pre-push ci"`
	Patterns []string `koanf:"patterns" yaml:"patterns"`
	// PassFiles appends the matching scope files to the command arguments.
	PassFiles bool `koanf:"pass_files" yaml:"pass_files"`
	// Shell runs the command through "sh -c" instead of splitting it.
	Shell bool `koanf:"shell" yaml:"shell"`
}

// ParseTaskRef parses the shorthand "id" or "id:mode". Mode defaults to fix.
func ParseTaskRef(s string) (string, task.Mode, error) {
	s = strings.TrimSpace(s)
	id, modeStr, hasMode := strings.Cut(s, ":")
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", fmt.Errorf("invalid task reference %q: empty task id", s)
	}
	if hasMode && strings.TrimSpace(modeStr) == "" {
		return "", "", fmt.Errorf("invalid task reference %q: empty mode", s)
	}
	mode, err := task.ParseMode(strings.TrimSpace(modeStr))
	if err != nil {
		return "", "", fmt.Errorf("invalid task reference %q: %w", s, err)
	}
	return id, mode, nil
}
