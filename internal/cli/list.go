package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/sked/pkg/model"
)

func newListCmd() *cobra.Command {
	var flagLimit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get(fmt.Sprintf("/api/v1/schedules/?limit=%d", flagLimit))
			if err != nil {
				return fmt.Errorf("list schedules: %w", err)
			}

			var data struct {
				Schedules []model.Schedule `json:"schedules"`
				Total     int              `json:"total"`
			}
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if len(data.Schedules) == 0 {
				fmt.Println("No schedules found.")
				return nil
			}

			fmt.Printf("%-36s  %-20s  %-10s  %-10s  %s\n", "ID", "NAME", "STATUS", "SCORE", "UPDATED")
			for _, s := range data.Schedules {
				score := "-"
				if s.HardScore != nil {
					score = fmt.Sprintf("%d", *s.HardScore)
				}
				fmt.Printf("%-36s  %-20s  %-10s  %-10s  %s\n",
					s.ID, truncate(s.Name, 20), s.Status, score, humanize.Time(s.UpdatedAt))
			}
			if data.Total > len(data.Schedules) {
				fmt.Printf("(%d of %d shown)\n", len(data.Schedules), data.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum schedules to list")
	return cmd
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
