// Package cli implements timelinectl, an offline editor that works on
// project files instead of a running agent.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-timeline/internal/config"
	"github.com/heimdex/heimdex-timeline/internal/logging"
)

const defaultProjectFile = "project.json"

type options struct {
	projectPath string
	logLevel    string
	ffprobe     string
	ffmpeg      string
}

// NewRootCmd builds the timelinectl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "timelinectl",
		Short:         "Edit Heimdex timeline projects from the command line",
		Long:          "Create, edit, preview and export timeline project files without a running agent.",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.projectPath, "project", "p", envOr("HEIMDEX_TIMELINE_PROJECT_FILE", defaultProjectFile), "Project file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.ffprobe, "ffprobe", envOr("HEIMDEX_TIMELINE_FFPROBE", "ffprobe"), "ffprobe binary")
	root.PersistentFlags().StringVar(&opts.ffmpeg, "ffmpeg", envOr("HEIMDEX_TIMELINE_FFMPEG", "ffmpeg"), "ffmpeg binary")

	root.AddCommand(
		newInitCmd(opts),
		newShowCmd(opts),
		newApplyCmd(opts),
		newImportCmd(opts),
		newPreviewCmd(opts),
		newExportEDLCmd(opts),
	)
	return root
}

// Execute runs timelinectl and reports errors on stderr.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (o *options) logger(w io.Writer) *slog.Logger {
	return logging.NewLoggerTo(w, o.logLevel)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
