package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type applyLine struct {
	Type    string `json:"type"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

func newApplyCmd(opts *options) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "apply [command-json...]",
		Short: "Apply edit commands to the project",
		Long: "Apply edit commands in order. Commands are JSON objects such as " +
			`{"type":"ADD_CLIP","mediaId":"...","trackId":"V1","startFrame":0}` +
			" given as arguments or one per line on stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds := args
			if len(cmds) == 0 {
				lines, err := readLines(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				cmds = lines
			}
			if len(cmds) == 0 {
				return fmt.Errorf("no commands given")
			}

			session, err := opts.openSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			refused := 0
			for _, raw := range cmds {
				res, err := session.ApplyWithoutPreview(cmd.Context(), []byte(raw))
				if err != nil {
					return err
				}
				line := applyLine{Type: commandType(raw), Applied: res.Applied, Reason: res.Reason}
				if !res.Applied {
					refused++
				}
				if err := writeJSON(cmd.OutOrStdout(), line); err != nil {
					return err
				}
			}

			if strict && refused > 0 {
				return fmt.Errorf("%d of %d commands were not applied", refused, len(cmds))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any command is refused")
	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

// commandType pulls the type name out of a raw command for reporting.
func commandType(raw string) string {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return ""
	}
	return probe.Type
}
