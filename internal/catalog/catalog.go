// Package catalog holds the built-in speaking tasks and impromptu
// topics, and seeds them into a store. Seeding is an idempotent upsert:
// calling it repeatedly, or concurrently from several processes, leaves
// exactly one copy of each entry.
package catalog

import (
	"context"
	"fmt"

	"github.com/speakbetter/speech-coach/internal/coach"
)

// DefaultTasks are the built-in practice exercises.
var DefaultTasks = []coach.SpeakingTask{
	{
		TaskID:       "short-presentation",
		Title:        "Short Presentation",
		Description:  "Practice delivering a focused presentation on a topic of your choice",
		Instructions: "Prepare and deliver a 3-5 minute presentation on any topic you're passionate about. Structure your talk with a clear introduction, main points, and conclusion. Focus on engaging your audience and speaking with confidence.",
		TimeLimit:    5,
	},
	{
		TaskID:       "elevator-pitch",
		Title:        "Elevator Pitch",
		Description:  "Perfect your 60-second personal pitch",
		Instructions: "Create a compelling 60-second pitch about yourself, your skills, or your business idea. Imagine you're in an elevator with someone important - make every second count!",
		TimeLimit:    1,
	},
	{
		TaskID:       "storytelling",
		Title:        "Storytelling Challenge",
		Description:  "Tell an engaging story that captivates your audience",
		Instructions: "Share a personal story, anecdote, or fictional tale. Focus on using vivid details, emotional connection, and a clear narrative arc to keep your audience engaged.",
		TimeLimit:    4,
	},
	{
		TaskID:       "impromptu-speech",
		Title:        "Impromptu Speech",
		Description:  "Speak spontaneously on a random topic",
		Instructions: "You'll be given a random topic and have 30 seconds to think before delivering a 2-3 minute impromptu speech. Practice thinking on your feet and organizing your thoughts quickly.",
		TimeLimit:    3,
	},
	{
		TaskID:       "product-demo",
		Title:        "Product Demo",
		Description:  "Demonstrate and sell a product or service",
		Instructions: "Choose a product (real or imaginary) and give a compelling demonstration. Explain its features, benefits, and why your audience should buy it. Focus on persuasion and clarity.",
		TimeLimit:    4,
	},
}

// DefaultTopics are the built-in impromptu speech prompts.
var DefaultTopics = []string{
	"If you could have dinner with anyone from history, who would it be and why?",
	"What skill do you wish you could master instantly?",
	"Describe your ideal vacation destination",
	"What's the most important lesson you've learned in life?",
	"If you could solve one world problem, what would it be?",
	"What technology from the future would you most want to use?",
	"Describe a moment that changed your perspective",
	"What advice would you give to your younger self?",
	"If you could start a new tradition, what would it be?",
	"What's the best compliment you've ever received?",
	"Describe your dream job",
	"What book or movie has influenced you the most?",
	"If you could live in any time period, when would it be?",
	"What's your definition of success?",
	"Describe a challenge that made you stronger",
}

// EnsureSeeded upserts the default tasks and topics into the store.
func EnsureSeeded(ctx context.Context, store coach.Store) error {
	return Seed(ctx, store, DefaultTasks, DefaultTopics)
}

// Seed upserts an explicit task and topic list; tests inject smaller
// catalogs through it.
func Seed(ctx context.Context, store coach.Store, tasks []coach.SpeakingTask, topics []string) error {
	for i := range tasks {
		task := tasks[i]
		if err := store.UpsertTask(ctx, &task); err != nil {
			return fmt.Errorf("seeding task %q: %w", task.TaskID, err)
		}
	}
	for _, topic := range topics {
		t := &coach.ImpromptuTopic{
			Topic:      topic,
			Category:   "general",
			Difficulty: "medium",
			Active:     true,
		}
		if err := store.UpsertTopic(ctx, t); err != nil {
			return fmt.Errorf("seeding topic %q: %w", topic, err)
		}
	}
	return nil
}
