package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/sked/pkg/model"
)

func newGenerateCmd() *cobra.Command {
	var (
		flagMode   string
		flagBudget int
	)

	cmd := &cobra.Command{
		Use:   "generate <schedule_id>",
		Short: "Generate a schedule with the optimizer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			fmt.Printf("Generating schedule %s (mode %s)...\n", id, flagMode)
			start := time.Now()

			resp, err := client.Post("/api/v1/schedules/"+id+"/generate", map[string]any{
				"mode":                flagMode,
				"time_budget_seconds": flagBudget,
			})
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}

			var outcome model.GenerationOutcome
			if err := json.Unmarshal(resp.Data, &outcome); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			printOutcome(&outcome, time.Since(start))
			if !outcome.Success {
				return fmt.Errorf("generation failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagMode, "mode", "AI_ASSISTED", "Generation mode (MANUAL, AI_ASSISTED, FULLY_AUTOMATED)")
	cmd.Flags().IntVar(&flagBudget, "time-budget", 0, "Solve time budget in seconds (0 = server default)")

	return cmd
}

func printOutcome(o *model.GenerationOutcome, wall time.Duration) {
	if o.Success {
		fmt.Println("Generation succeeded")
	} else {
		fmt.Println("Generation failed")
	}
	fmt.Printf("  Message:  %s\n", o.Message)
	if o.JobID != "" {
		fmt.Printf("  Job:      %s\n", o.JobID)
	}
	if o.SectionsCreated > 0 {
		fmt.Printf("  Sections: %d (%d students)\n", o.SectionsCreated, o.StudentsScheduled)
	}
	if o.HardScore != nil {
		fmt.Printf("  Score:    hard %d", *o.HardScore)
		if o.SoftScore != nil {
			fmt.Printf(", soft %d", *o.SoftScore)
		}
		fmt.Println()
	}
	if o.Validation != nil && o.Validation.ConflictCount > 0 {
		fmt.Printf("  Conflicts: %d\n", o.Validation.ConflictCount)
		for _, c := range o.Validation.Conflicts {
			fmt.Printf("    - [%s] %s\n", c.Kind, c.Description)
		}
	}
	if o.RequiresReview {
		fmt.Println("  Review:   manual review required before publishing")
	}
	fmt.Printf("  Took:     %s\n", wall.Round(time.Second))
}
