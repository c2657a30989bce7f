package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/speakbetter/speech-coach/internal/app"
)

var topicsPick bool

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the speaking task catalog",
	RunE:  runTasks,
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List impromptu topics or pick one at random",
	Long: `List the active impromptu-speech topics, or with --pick choose one
uniformly at random for an impromptu practice round.

Examples:
  speech-coach topics
  speech-coach topics --pick`,
	RunE: runTopics,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(topicsCmd)

	topicsCmd.Flags().BoolVar(&topicsPick, "pick", false,
		"pick a single random topic")
}

func runTasks(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(appContext())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tasks, err := a.Service().Tasks(ctx)
	if err != nil {
		return err
	}
	return a.WriteResult(map[string]any{"tasks": tasks})
}

func runTopics(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(appContext())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if topicsPick {
		topic, err := a.Service().RandomTopic(ctx)
		if err != nil {
			return err
		}
		return a.WriteResult(map[string]any{"topic": topic})
	}

	topics, err := a.Service().Topics(ctx)
	if err != nil {
		return err
	}
	return a.WriteResult(map[string]any{"topics": topics})
}
