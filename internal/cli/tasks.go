package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	clierrors "github.com/ariel-frischer/gatehook/internal/errors"
	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/spf13/cobra"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Short:   "List registered tasks",
		GroupID: groupConfig,
		Long: `List every registered task: built-ins first, then custom_tasks from the
configuration, in registration order.

Columns show the hooks a task applies to (empty means all), whether it can fix
and at which safety level, whether its failure blocks, and its file patterns.`,
		Example: `  gatehook tasks
  gatehook tasks --hook pre-push
  gatehook tasks --json`,
		Args: noArgs,
		RunE: runTasks,
	}

	cmd.Flags().String("hook", "", "Only list tasks applicable to this hook")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

// taskInfo is the JSON shape of one listed task.
type taskInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Hooks     []string `json:"hooks,omitempty"`
	Fix       bool     `json:"fix"`
	FixSafety string   `json:"fix_safety,omitempty"`
	Blocking  bool     `json:"blocking"`
	Patterns  []string `json:"patterns,omitempty"`
}

func runTasks(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	var hook task.HookType
	if h, _ := cmd.Flags().GetString("hook"); h != "" {
		if hook, err = task.ParseHookType(h); err != nil {
			return clierrors.UnknownHook(h, hookNames())
		}
	}

	infos := listTasks(a.registry, hook)
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	return writeTaskTable(cmd.OutOrStdout(), infos)
}

// listTasks describes registered tasks, optionally filtered by hook.
func listTasks(registry *task.Registry, hook task.HookType) []taskInfo {
	infos := []taskInfo{}
	for _, e := range registry.Entries() {
		d := e.Descriptor
		if hook != "" && !d.AppliesTo(hook) {
			continue
		}
		info := taskInfo{
			ID:       d.ID,
			Name:     d.Name,
			Fix:      d.SupportsFix,
			Blocking: d.Blocking,
			Patterns: d.Patterns,
		}
		for _, h := range d.Hooks {
			info.Hooks = append(info.Hooks, string(h))
		}
		if d.SupportsFix {
			info.FixSafety = string(d.FixSafety)
		}
		infos = append(infos, info)
	}
	return infos
}

func writeTaskTable(w io.Writer, infos []taskInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tHOOKS\tFIX\tBLOCKING\tPATTERNS")
	for _, info := range infos {
		hooks := "all"
		if len(info.Hooks) > 0 {
			hooks = strings.Join(info.Hooks, ",")
		}
		fix := "-"
		if info.Fix {
			fix = info.FixSafety
		}
		patterns := "-"
		if len(info.Patterns) > 0 {
			patterns = strings.Join(info.Patterns, " ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", info.ID, hooks, fix, info.Blocking, patterns)
	}
	return tw.Flush()
}
