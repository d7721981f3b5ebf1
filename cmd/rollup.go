package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/answerscope/answerscope/internal/utils"
	"github.com/answerscope/answerscope/pkg/visibility"
)

// rollupCmd implements: answerscope rollup
//
// Recomputes the daily visibility scores for one day plus the weekly
// rankings for the week containing it. Safe to rerun; rows for the same
// day/week are overwritten.
var rollupCmd = &cobra.Command{
	Use:   "rollup",
	Short: "Roll stored citations up into daily visibility scores and weekly rankings",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, _ := cmd.Flags().GetString("day")
		if day == "" {
			day = time.Now().UTC().Format("2006-01-02")
		}

		dbPath, _ := rootCmd.PersistentFlags().GetString("dbpath")
		lock, err := utils.NewBatchLock(dbPath)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		engine := visibility.NewEngine(db, lock)
		scores, rankings, err := engine.RollupDaily(cmd.Context(), day)
		if err != nil {
			return err
		}

		fmt.Printf("Rollup for %s: %d visibility scores, %d weekly rankings\n", day, scores, rankings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rollupCmd)
	rollupCmd.Flags().String("day", "", "Day to roll up as YYYY-MM-DD (default today, UTC)")
}
