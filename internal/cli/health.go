package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server and optimizer health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/health")
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}

			var data struct {
				Status    string `json:"status"`
				Uptime    string `json:"uptime"`
				Optimizer string `json:"optimizer"`
			}
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Server:    %s (up %s)\n", data.Status, data.Uptime)
			fmt.Printf("Optimizer: %s\n", data.Optimizer)
			return nil
		},
	}
}
