package coach

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 10, 30, 0, 0, time.UTC)
}

func TestSessionSummariesNewestFirst(t *testing.T) {
	views := []SessionView{
		{Session: ProgressSession{ID: 1, RecordingID: 11, SessionDate: day(1)}},
		{Session: ProgressSession{ID: 3, RecordingID: 13, SessionDate: day(3)}},
		{Session: ProgressSession{ID: 2, RecordingID: 12, SessionDate: day(2)}},
	}

	out := SessionSummaries(views)
	require.Len(t, out, 3)
	assert.Equal(t, int64(3), out[0].ID)
	assert.Equal(t, int64(2), out[1].ID)
	assert.Equal(t, int64(1), out[2].ID)
}

func TestSessionSummariesAssessmentFields(t *testing.T) {
	withAssessment := SessionView{
		Session: ProgressSession{ID: 1, RecordingID: 11, SessionDate: day(5)},
		Assessment: &SelfAssessment{
			Confidence:   8,
			Clarity:      6,
			Pace:         7,
			AverageScore: 7.0,
		},
		TaskTitle: "Product Pitch",
	}
	without := SessionView{
		Session: ProgressSession{ID: 2, RecordingID: 12, SessionDate: day(4)},
	}

	out := SessionSummaries([]SessionView{withAssessment, without})
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, "Product Pitch", first.TaskName)
	require.NotNil(t, first.AverageScore)
	assert.Equal(t, 7.0, *first.AverageScore)
	require.NotNil(t, first.Confidence)
	assert.Equal(t, 8, *first.Confidence)
	require.NotNil(t, first.Clarity)
	assert.Equal(t, 6, *first.Clarity)
	require.NotNil(t, first.Pace)
	assert.Equal(t, 7, *first.Pace)

	// Without an assessment the four fields are nil together.
	second := out[1]
	assert.Equal(t, FreePracticeLabel, second.TaskName)
	assert.Nil(t, second.AverageScore)
	assert.Nil(t, second.Confidence)
	assert.Nil(t, second.Clarity)
	assert.Nil(t, second.Pace)
}

func TestSessionSummariesTaskNameFallsBackWithoutAssessment(t *testing.T) {
	// A task title only shows when an assessment is linked.
	views := []SessionView{
		{
			Session:   ProgressSession{ID: 1, SessionDate: day(1)},
			TaskTitle: "Product Pitch",
		},
		{
			Session:    ProgressSession{ID: 2, SessionDate: day(2)},
			Assessment: &SelfAssessment{AverageScore: 5.0},
			TaskTitle:  "",
		},
	}

	out := SessionSummaries(views)
	require.Len(t, out, 2)
	assert.Equal(t, FreePracticeLabel, out[0].TaskName)
	assert.Equal(t, FreePracticeLabel, out[1].TaskName)
}

func TestSessionSummariesDateFormats(t *testing.T) {
	views := []SessionView{
		{Session: ProgressSession{ID: 1, SessionDate: day(7)}},
	}

	out := SessionSummaries(views)
	require.Len(t, out, 1)
	assert.Equal(t, "2026-03-07", out[0].Date)
	assert.Equal(t, "2026-03-07T10:30:00Z", out[0].Timestamp)
}

func TestMetricHistoryFiltersAndSortsAscending(t *testing.T) {
	views := []SessionView{
		{
			Session:  ProgressSession{ID: 3, SessionDate: day(3)},
			Analysis: &AnalysisResult{SpeechRate: 150, PauseCount: 5},
		},
		{
			// No analysis linked: excluded from the series.
			Session: ProgressSession{ID: 2, SessionDate: day(2)},
		},
		{
			Session:  ProgressSession{ID: 1, SessionDate: day(1)},
			Analysis: &AnalysisResult{SpeechRate: 120, PauseCount: 2},
		},
	}

	out := MetricHistory(views)
	require.Len(t, out, 2)
	assert.Equal(t, "2026-03-01", out[0].Date)
	assert.Equal(t, 120.0, out[0].SpeechRate)
	assert.Equal(t, "2026-03-03", out[1].Date)
	assert.Equal(t, 150.0, out[1].SpeechRate)
}

func TestMetricHistoryZeroMetricsChartAsZero(t *testing.T) {
	views := []SessionView{
		{
			Session:  ProgressSession{ID: 1, SessionDate: day(1)},
			Analysis: &AnalysisResult{},
		},
	}

	out := MetricHistory(views)
	require.Len(t, out, 1)
	assert.Zero(t, out[0].SpeechRate)
	assert.Zero(t, out[0].PauseCount)
	assert.Zero(t, out[0].VolumeVariation)
	assert.Zero(t, out[0].PitchVariation)
	assert.Zero(t, out[0].EnergyLevel)
}

func TestMetricHistoryEmptyInput(t *testing.T) {
	assert.Empty(t, MetricHistory(nil))
	assert.Empty(t, SessionSummaries(nil))
}
