package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>...",
		Short: "Import media files or folders into the project library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var imported []timeline.MediaItem
			for _, path := range args {
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				if info.IsDir() {
					items, err := session.ImportFolder(cmd.Context(), path)
					imported = append(imported, items...)
					if err != nil {
						return fmt.Errorf("import %s: %w", path, err)
					}
					continue
				}
				item, err := session.Import(cmd.Context(), path)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				imported = append(imported, item)
			}

			if imported == nil {
				imported = []timeline.MediaItem{}
			}
			return writeJSON(cmd.OutOrStdout(), imported)
		},
	}
}
