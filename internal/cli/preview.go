package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-timeline/internal/preview"
)

var ErrNothingVisible = errors.New("no visual clip under the playhead")

func newPreviewCmd(opts *options) *cobra.Command {
	var (
		out   string
		frame int
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Write the frame under the playhead as a JPEG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("frame") {
				if err := session.Seek(cmd.Context(), frame); err != nil {
					return err
				}
			}

			f := session.Preview(cmd.Context())
			if f == nil {
				return ErrNothingVisible
			}
			data, err := preview.EncodeJPEG(f.Image)
			if err != nil {
				return fmt.Errorf("encode preview: %w", err)
			}
			if err := writeFile(out, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: clip %s, source frame %d\n", out, f.ClipID, f.MediaFrame)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "preview.jpg", "Output JPEG path")
	cmd.Flags().IntVar(&frame, "frame", 0, "Move the playhead to this frame first")
	return cmd
}
