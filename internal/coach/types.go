// Package coach holds the speech-coaching domain: recordings, their
// analysis results, self-assessments and progress sessions, plus the
// service that runs the decode → extract → feedback pipeline over them.
package coach

import (
	"fmt"
	"math"
	"time"
)

// Recording identifies one uploaded audio clip. Immutable once created
// except for Duration, which analysis backfills.
type Recording struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	TaskID           string     `json:"task_id,omitempty"`
	Filename         string     `json:"filename"`
	OriginalFilename string     `json:"original_filename"`
	FilePath         string     `json:"file_path"`
	UploadedAt       time.Time  `json:"uploaded_at"`
	FileSize         int64      `json:"file_size"`
	Duration         *float64   `json:"duration,omitempty"`
	Scene            string     `json:"scene"`
	Topic            string     `json:"topic,omitempty"`
}

// AnalysisResult is the one-to-one derived artifact of a Recording.
// DetailedAnalysis carries the full normalized metric payload for audit.
type AnalysisResult struct {
	ID               int64          `json:"id"`
	RecordingID      int64          `json:"recording_id"`
	Duration         float64        `json:"duration"`
	SpeechRate       float64        `json:"speech_rate"`
	PauseCount       int            `json:"pause_count"`
	VolumeVariation  float64        `json:"volume_variation"`
	PitchVariation   float64        `json:"pitch_variation"`
	EnergyLevel      float64        `json:"energy_level"`
	DetailedAnalysis map[string]any `json:"detailed_analysis"`
	AnalyzedAt       time.Time      `json:"analyzed_at"`
}

// SelfAssessment is a user's subjective rating of one recording.
// AverageScore is always derived from the three ratings; it is never
// accepted from input.
type SelfAssessment struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	RecordingID  int64     `json:"recording_id"`
	TaskID       string    `json:"task_id,omitempty"`
	Confidence   int       `json:"confidence"`
	Clarity      int       `json:"clarity"`
	Pace         int       `json:"pace"`
	Reflection   string    `json:"reflection"`
	AverageScore float64   `json:"average_score"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// NewSelfAssessment validates the three ratings (each 1..10) and
// computes the derived average score, rounded to one decimal.
func NewSelfAssessment(userID, recordingID int64, taskID string, confidence, clarity, pace int, reflection string) (*SelfAssessment, error) {
	for name, v := range map[string]int{
		"confidence": confidence,
		"clarity":    clarity,
		"pace":       pace,
	} {
		if v < 1 || v > 10 {
			return nil, fmt.Errorf("%s rating must be in [1,10], got %d", name, v)
		}
	}
	return &SelfAssessment{
		UserID:       userID,
		RecordingID:  recordingID,
		TaskID:       taskID,
		Confidence:   confidence,
		Clarity:      clarity,
		Pace:         pace,
		Reflection:   reflection,
		AverageScore: round1(float64(confidence+clarity+pace) / 3.0),
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ProgressSession is the immutable join of one coaching interaction:
// a recording, its optional assessment and its optional analysis.
type ProgressSession struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	RecordingID  int64     `json:"recording_id"`
	AssessmentID *int64    `json:"assessment_id,omitempty"`
	AnalysisID   *int64    `json:"analysis_id,omitempty"`
	SessionDate  time.Time `json:"session_date"`
}

// SessionView is a session joined with its linked records, as returned
// by the store for history projections.
type SessionView struct {
	Session    ProgressSession
	Assessment *SelfAssessment
	Analysis   *AnalysisResult
	TaskTitle  string
}

// SpeakingTask is a predefined practice exercise.
type SpeakingTask struct {
	TaskID       string    `json:"task_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Instructions string    `json:"instructions"`
	TimeLimit    int       `json:"time_limit"` // minutes
	CreatedAt    time.Time `json:"created_at"`
}

// ImpromptuTopic is a prompt for impromptu-speech practice.
type ImpromptuTopic struct {
	ID         int64  `json:"id"`
	Topic      string `json:"topic"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty_level"`
	Active     bool   `json:"is_active"`
}
