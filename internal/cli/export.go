package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-timeline/internal/export"
)

var ErrEmptyTimeline = errors.New("timeline has no exportable clips")

func newExportEDLCmd(opts *options) *cobra.Command {
	var (
		outDir string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "export-edl",
		Short: "Export the timeline as a CMX3600 EDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(opts.projectPath)
			if err != nil {
				return err
			}
			if err := export.ValidateOutputDir(outDir); err != nil {
				return err
			}

			name := export.SanitizeName(title, 120)
			if name == "" {
				name = "heimdex_timeline"
			}

			events, unresolved := export.Events(p)
			if len(events) == 0 {
				return ErrEmptyTimeline
			}

			path, err := export.WriteEDL(outDir, name, export.GenerateEDL(events, name, p.FPS))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), export.ExportResponse{
				Status:          "ok",
				Format:          "edl",
				OutputPath:      path,
				EventCount:      len(events),
				UnresolvedClips: unresolved,
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().StringVarP(&title, "title", "t", "", "EDL title and file name")
	return cmd
}
