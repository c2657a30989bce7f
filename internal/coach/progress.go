package coach

import (
	"sort"
	"time"
)

// FreePracticeLabel is the task label shown for sessions without a
// linked task.
const FreePracticeLabel = "Free Practice"

const dateLayout = "2006-01-02"

// SessionSummary is one entry of the session list view. The four
// assessment fields are nil together when no assessment is linked.
type SessionSummary struct {
	ID           int64    `json:"id"`
	RecordingID  int64    `json:"recording_id"`
	TaskName     string   `json:"task_name"`
	Date         string   `json:"date"`
	Timestamp    string   `json:"timestamp"`
	AverageScore *float64 `json:"average_score"`
	Confidence   *int     `json:"confidence"`
	Clarity      *int     `json:"clarity"`
	Pace         *int     `json:"pace"`
}

// MetricPoint is one entry of the metric-history chart series. Metric
// fields are plain numbers, never null; a missing value charts as 0.
type MetricPoint struct {
	Date            string  `json:"date"`
	SpeechRate      float64 `json:"speech_rate"`
	PauseCount      int     `json:"pause_count"`
	VolumeVariation float64 `json:"volume_variation"`
	PitchVariation  float64 `json:"pitch_variation"`
	EnergyLevel     float64 `json:"energy_level"`
}

// SessionSummaries projects session views into display entries, newest
// first. Pure function over its input; no store access.
func SessionSummaries(views []SessionView) []SessionSummary {
	sorted := make([]SessionView, len(views))
	copy(sorted, views)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Session.SessionDate.After(sorted[j].Session.SessionDate)
	})

	out := make([]SessionSummary, 0, len(sorted))
	for _, v := range sorted {
		taskName := FreePracticeLabel
		if v.Assessment != nil && v.TaskTitle != "" {
			taskName = v.TaskTitle
		}

		entry := SessionSummary{
			ID:          v.Session.ID,
			RecordingID: v.Session.RecordingID,
			TaskName:    taskName,
			Date:        v.Session.SessionDate.Format(dateLayout),
			Timestamp:   v.Session.SessionDate.Format(time.RFC3339),
		}
		if v.Assessment != nil {
			score := v.Assessment.AverageScore
			confidence := v.Assessment.Confidence
			clarity := v.Assessment.Clarity
			pace := v.Assessment.Pace
			entry.AverageScore = &score
			entry.Confidence = &confidence
			entry.Clarity = &clarity
			entry.Pace = &pace
		}
		out = append(out, entry)
	}
	return out
}

// MetricHistory projects session views into a chart series: only
// sessions with a linked analysis, oldest first so charts read left to
// right. Pure function over its input.
func MetricHistory(views []SessionView) []MetricPoint {
	withAnalysis := make([]SessionView, 0, len(views))
	for _, v := range views {
		if v.Analysis != nil {
			withAnalysis = append(withAnalysis, v)
		}
	}
	sort.SliceStable(withAnalysis, func(i, j int) bool {
		return withAnalysis[i].Session.SessionDate.Before(withAnalysis[j].Session.SessionDate)
	})

	out := make([]MetricPoint, 0, len(withAnalysis))
	for _, v := range withAnalysis {
		out = append(out, MetricPoint{
			Date:            v.Session.SessionDate.Format(dateLayout),
			SpeechRate:      v.Analysis.SpeechRate,
			PauseCount:      v.Analysis.PauseCount,
			VolumeVariation: v.Analysis.VolumeVariation,
			PitchVariation:  v.Analysis.PitchVariation,
			EnergyLevel:     v.Analysis.EnergyLevel,
		})
	}
	return out
}
