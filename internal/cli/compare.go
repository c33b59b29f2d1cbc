package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/sked/pkg/model"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <schedule_a> <schedule_b>",
		Short: "Compare two candidate schedules",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/schedules/compare?a=" + args[0] + "&b=" + args[1])
			if err != nil {
				return fmt.Errorf("compare: %w", err)
			}

			var result model.ComparisonResult
			if err := json.Unmarshal(resp.Data, &result); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			printSummary("A", result.A)
			printSummary("B", result.B)
			if result.Winner == "" {
				fmt.Printf("Result: %s\n", result.Recommendation)
			} else {
				fmt.Printf("Result: %s wins (%s)\n", result.Winner, result.Recommendation)
			}
			return nil
		},
	}
}

func printSummary(label string, s model.ScheduleSummary) {
	fmt.Printf("%s: %s\n", label, s.ScheduleID)
	fmt.Printf("  Conflicts: %d\n", s.ConflictCount)
	if s.HardScore != nil {
		fmt.Printf("  Hard:      %d\n", *s.HardScore)
	} else {
		fmt.Printf("  Hard:      (not scored)\n")
	}
	if s.SoftScore != nil {
		fmt.Printf("  Soft:      %d\n", *s.SoftScore)
	}
}
