package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

func newInitCmd(opts *options) *cobra.Command {
	var (
		fps   float64
		zoom  float64
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty project file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.projectPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", opts.projectPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			p := timeline.NewProject(fps, zoom)
			if err := saveProject(opts.projectPath, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%.3g fps)\n", opts.projectPath, p.FPS)
			return nil
		},
	}

	cmd.Flags().Float64Var(&fps, "fps", timeline.DefaultFPS, "Project frame rate")
	cmd.Flags().Float64Var(&zoom, "zoom", timeline.DefaultPixelsPerFrame, "Timeline zoom in pixels per frame")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing project file")
	return cmd
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the project as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(opts.projectPath)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), p)
		},
	}
}
