package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/speakbetter/speech-coach/internal/app"
	"github.com/speakbetter/speech-coach/internal/coach"
)

var (
	assessUserID      int64
	assessRecordingID int64
	assessTaskID      string
	assessConfidence  int
	assessClarity     int
	assessPace        int
	assessReflection  string
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Submit a self-assessment for a recording",
	Long: `Record how a practice session felt: confidence, clarity and pace
ratings (1-10 each) plus a free-text reflection. The average score is
derived from the three ratings.

Submitting an assessment also creates the progress session that links
the recording, the assessment and its analysis into the history views.

Example:
  speech-coach assess --user 1 --recording 42 \
    --confidence 8 --clarity 6 --pace 7 \
    --reflection "Felt rushed in the middle section"`,
	RunE: runAssess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().Int64Var(&assessUserID, "user", 0, "owning user id (required)")
	assessCmd.Flags().Int64Var(&assessRecordingID, "recording", 0, "recording id (required)")
	assessCmd.Flags().StringVar(&assessTaskID, "task", "", "speaking task id")
	assessCmd.Flags().IntVar(&assessConfidence, "confidence", 0, "confidence rating 1-10 (required)")
	assessCmd.Flags().IntVar(&assessClarity, "clarity", 0, "clarity rating 1-10 (required)")
	assessCmd.Flags().IntVar(&assessPace, "pace", 0, "pace rating 1-10 (required)")
	assessCmd.Flags().StringVar(&assessReflection, "reflection", "", "free-text reflection (required)")

	assessCmd.MarkFlagRequired("user")
	assessCmd.MarkFlagRequired("recording")
	assessCmd.MarkFlagRequired("confidence")
	assessCmd.MarkFlagRequired("clarity")
	assessCmd.MarkFlagRequired("pace")
	assessCmd.MarkFlagRequired("reflection")
}

func runAssess(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(appContext())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	assessment, err := a.Service().SubmitAssessment(ctx, coach.AssessmentInput{
		UserID:      assessUserID,
		RecordingID: assessRecordingID,
		TaskID:      assessTaskID,
		Confidence:  assessConfidence,
		Clarity:     assessClarity,
		Pace:        assessPace,
		Reflection:  assessReflection,
	})
	if err != nil {
		return err
	}

	return a.WriteResult(assessment)
}
