package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var flagOutput string

	cmd := &cobra.Command{
		Use:   "export <schedule_id>",
		Short: "Show the optimizer payload that a generation would submit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/schedules/" + args[0] + "/export")
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			pretty, err := json.MarshalIndent(json.RawMessage(resp.Data), "", "  ")
			if err != nil {
				return fmt.Errorf("format payload: %w", err)
			}
			pretty = append(pretty, '\n')

			if flagOutput != "" {
				if err := os.WriteFile(flagOutput, pretty, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", flagOutput, err)
				}
				fmt.Printf("Wrote %s to %s\n", humanize.Bytes(uint64(len(pretty))), flagOutput)
				return nil
			}

			_, err = os.Stdout.Write(pretty)
			return err
		},
	}

	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write payload to a file instead of stdout")
	return cmd
}
