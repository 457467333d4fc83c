package cli

import (
	"fmt"

	"github.com/ariel-frischer/gatehook/internal/config"
	clierrors "github.com/ariel-frischer/gatehook/internal/errors"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newInitCmd(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Create a project config file",
		GroupID: groupConfig,
		Long: `Create .gatehook/config.yml with the commented default configuration.

An existing file is kept unless --force is given. With --from-json an existing
.gatehook/config.json is converted to YAML instead; the converted document must
load cleanly and an existing YAML file is never overwritten.`,
		Example: `  gatehook init
  gatehook init --force
  gatehook init --from-json --dry-run`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, fs)
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
	cmd.Flags().Bool("from-json", false, "Convert .gatehook/config.json to YAML")
	cmd.Flags().Bool("dry-run", false, "With --from-json, report without writing")
	return cmd
}

func runInit(cmd *cobra.Command, fs afero.Fs) error {
	force, _ := cmd.Flags().GetBool("force")
	fromJSON, _ := cmd.Flags().GetBool("from-json")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	target := config.ProjectConfigPath()
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		target = p
	}

	var (
		result *config.ScaffoldResult
		err    error
	)
	if fromJSON {
		result, err = config.ConvertJSONConfig(fs, config.ProjectJSONConfigPath(), target, dryRun)
	} else {
		result, err = config.WriteTemplate(fs, target, force)
	}
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration, "init failed")
	}

	if !fromJSON && !result.Written {
		return clierrors.ConfigExists(target)
	}

	out := cmd.OutOrStdout()
	if result.Written {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(out, "%s %s\n", green("✓"), result.Message)
		return nil
	}
	fmt.Fprintln(out, result.Message)
	return nil
}
