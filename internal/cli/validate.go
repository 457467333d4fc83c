package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ariel-frischer/gatehook/internal/config"
	"github.com/ariel-frischer/gatehook/internal/dag"
	clierrors "github.com/ariel-frischer/gatehook/internal/errors"
	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "validate [hook]",
		Short:   "Validate the configuration and show execution order",
		GroupID: groupConfig,
		Long: `Validate the configuration and the pipeline of each hook.

Checks for:
- Configuration values (enums, required fields, task modes)
- Task references that name no registered task
- Missing stage or task dependencies
- Dependency cycles, reported with the full cycle path

For valid pipelines the execution waves are printed: entries in the same wave
may run concurrently, and every dependency sits in an earlier wave.

Exit codes:
  0 - Configuration is valid
  4 - Invalid configuration or pipeline`,
		Example: `  # Validate every hook
  gatehook validate

  # Show the pre-push stage order on one line
  gatehook validate pre-push --compact`,
		Args: optionalHookArg,
		RunE: runValidate,
	}

	cmd.Flags().Bool("compact", false, "Print each pipeline on a single line")
	return cmd
}

func optionalHookArg(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return hookArg(cmd, args)
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	compact, _ := cmd.Flags().GetBool("compact")

	hooks := task.AllHooks()
	if len(args) == 1 {
		hooks = []task.HookType{task.HookType(args[0])}
	}

	out := cmd.OutOrStdout()
	var problems []string
	for i, hook := range hooks {
		if i > 0 && !compact {
			fmt.Fprintln(out)
		}
		problems = append(problems, validateHook(out, a.cfg.ForHook(hook), a.registry, compact)...)
	}

	if len(problems) > 0 {
		errOut := cmd.ErrOrStderr()
		red := color.New(color.FgRed, color.Bold)
		red.Fprintf(errOut, "\nError: ")
		fmt.Fprintf(errOut, "Validation failed\n\n")
		for i, p := range problems {
			fmt.Fprintf(errOut, "  %d. %s\n", i+1, p)
		}
		fmt.Fprintf(errOut, "\nFound %d validation error(s)\n", len(problems))
		return &exitError{code: ExitConfigError}
	}

	green := color.New(color.FgGreen, color.Bold)
	green.Fprintln(out, "\nValid")
	return nil
}

// validateHook prints one hook's execution order and returns its problems.
func validateHook(w io.Writer, s config.HookSettings, registry *task.Registry, compact bool) []string {
	name := string(s.Hook)
	if !s.Enabled {
		fmt.Fprintf(w, "%s: disabled\n", name)
		return nil
	}

	var problems []string
	unknown := func(owner, id string) {
		if !registry.Has(id) {
			problems = append(problems, fmt.Sprintf("%s: %s references unknown task %q", name, owner, id))
		}
	}

	if s.UsesStages() {
		g, err := dag.New("stage", s.Stages)
		if err != nil {
			return append(problems, clierrors.InvalidPipeline(name, err).Error())
		}
		waves, err := g.Waves(true)
		if err != nil {
			return append(problems, err.Error())
		}
		renderPipeline(w, name+" (stages)", g, waves, compact)
		for _, st := range s.Stages {
			refs := make([]string, len(st.Tasks))
			for i, t := range st.Tasks {
				refs[i] = t.ID + ":" + string(t.Mode)
				unknown("stage "+st.Name, t.ID)
			}
			if !compact {
				mode := "parallel"
				if !st.Parallel {
					mode = "sequential"
				}
				fmt.Fprintf(w, "  %s (%s): %s\n", st.Name, mode, strings.Join(refs, ", "))
			}
		}
		return problems
	}

	g, err := dag.New("task", s.Tasks)
	if err != nil {
		return append(problems, clierrors.InvalidPipeline(name, err).Error())
	}
	waves, err := g.Waves(s.Parallel)
	if err != nil {
		return append(problems, err.Error())
	}
	renderPipeline(w, name+" (tasks)", g, waves, compact)
	for _, t := range s.Tasks {
		unknown("task list", t.ID)
	}
	return problems
}

func renderPipeline[N dag.Node](w io.Writer, title string, g *dag.Graph[N], waves [][]N, compact bool) {
	if compact {
		fmt.Fprintf(w, "%s: %s\n", title, dag.RenderCompact(waves))
		return
	}
	fmt.Fprint(w, dag.RenderASCII(title, g, waves))
}
