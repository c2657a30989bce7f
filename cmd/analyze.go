package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/speakbetter/speech-coach/internal/app"
	"github.com/speakbetter/speech-coach/internal/coach"
)

var (
	analyzeUserID        int64
	analyzeTaskID        string
	analyzeScene         string
	analyzeTopic         string
	analyzeTimeout       time.Duration
	analyzeMaxConcurrent int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [audio-files...]",
	Short: "Upload and analyze speech recordings",
	Long: `Upload one or more audio recordings and run the full analysis
pipeline on each: decode to 16 kHz mono, extract delivery metrics,
persist the analysis and generate coaching feedback.

Recordings are decoded with ffmpeg, so any container/codec the local
ffmpeg build supports works (webm, m4a, mp3, wav, ...).

Analysis of the same recording is idempotent: re-running it returns
the stored result instead of creating a duplicate.

Examples:
  # Analyze a single practice recording
  speech-coach analyze --user 1 practice.webm

  # Analyze a recording against a task with a scene label
  speech-coach analyze --user 1 --task elevator-pitch --scene interview pitch.m4a

  # Analyze a batch of recordings concurrently
  speech-coach analyze --user 1 --max-concurrent 4 day1.wav day2.wav day3.wav`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Int64Var(&analyzeUserID, "user", 0,
		"owning user id (required)")
	analyzeCmd.Flags().StringVar(&analyzeTaskID, "task", "",
		"speaking task id (e.g. elevator-pitch)")
	analyzeCmd.Flags().StringVar(&analyzeScene, "scene", coach.DefaultScene,
		"virtual scene label (interview, small-audience, workshop)")
	analyzeCmd.Flags().StringVar(&analyzeTopic, "topic", "",
		"impromptu topic text")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute,
		"per-recording decode and analysis timeout")
	analyzeCmd.Flags().IntVar(&analyzeMaxConcurrent, "max-concurrent", 0,
		"max concurrent analyses for multi-file batches (default from config)")

	analyzeCmd.MarkFlagRequired("user")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(appContext())
	if err != nil {
		return err
	}
	defer a.Close()

	service := a.Service()

	ctx, cancel := context.WithTimeout(context.Background(),
		analyzeTimeout*time.Duration(len(args)))
	defer cancel()

	var recordingIDs []int64
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		rec, err := service.UploadRecording(ctx, coach.UploadInput{
			UserID:           analyzeUserID,
			TaskID:           analyzeTaskID,
			OriginalFilename: filepath.Base(path),
			Data:             data,
			Scene:            analyzeScene,
			Topic:            analyzeTopic,
		})
		if err != nil {
			return fmt.Errorf("uploading %s: %w", path, err)
		}
		recordingIDs = append(recordingIDs, rec.ID)
	}

	if len(recordingIDs) == 1 {
		out, err := service.AnalyzeRecording(ctx, analyzeUserID, recordingIDs[0])
		if err != nil {
			return err
		}
		return a.WriteResult(out)
	}

	maxConcurrent := analyzeMaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = a.Config().Batch.MaxConcurrent
	}

	results := service.AnalyzeBatch(ctx, analyzeUserID, recordingIDs, maxConcurrent)

	batch := make([]map[string]any, 0, len(results))
	failures := 0
	for _, r := range results {
		entry := map[string]any{"recording_id": r.RecordingID}
		if r.Err != nil {
			entry["error"] = r.Err.Error()
			failures++
		} else {
			entry["result"] = r.Output
		}
		batch = append(batch, entry)
	}
	if err := a.WriteResult(map[string]any{
		"results":  batch,
		"failed":   failures,
		"analyzed": len(results) - failures,
	}); err != nil {
		return err
	}
	if failures == len(results) {
		return fmt.Errorf("all %d analyses failed", failures)
	}
	return nil
}

// appContext assembles the shared app context from root flags.
func appContext() *app.Context {
	return &app.Context{
		ConfigFile:   configFile,
		OutputFile:   outputFile,
		OutputFormat: outputFormat,
		Verbose:      verbose,
	}
}
