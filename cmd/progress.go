package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/speakbetter/speech-coach/internal/app"
)

var progressUserID int64

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect a user's practice history",
}

var progressSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List practice sessions, newest first",
	Long: `List all progress sessions for a user with task labels, dates and
self-assessment scores where present.

Example:
  speech-coach progress sessions --user 1`,
	RunE: runProgressSessions,
}

var progressHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Metric history for trend charts, oldest first",
	Long: `Return the delivery-metric series over all analyzed sessions of a
user, ordered oldest first for left-to-right trend charts. Sessions
without an analysis are excluded.

Example:
  speech-coach progress history --user 1 -o table`,
	RunE: runProgressHistory,
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.AddCommand(progressSessionsCmd)
	progressCmd.AddCommand(progressHistoryCmd)

	progressCmd.PersistentFlags().Int64Var(&progressUserID, "user", 0,
		"user id (required)")
	progressCmd.MarkPersistentFlagRequired("user")
}

func runProgressSessions(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(appContext())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessions, err := a.Service().ListSessions(ctx, progressUserID)
	if err != nil {
		return err
	}
	return a.WriteResult(map[string]any{"sessions": sessions})
}

func runProgressHistory(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(appContext())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	history, err := a.Service().MetricHistory(ctx, progressUserID)
	if err != nil {
		return err
	}
	return a.WriteResult(map[string]any{"history": history})
}
