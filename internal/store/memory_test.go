package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speakbetter/speech-coach/internal/coach"
)

func TestMemoryStoreRecordingLifecycle(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	rec := &coach.Recording{UserID: 1, Filename: "a.wav", UploadedAt: time.Now()}
	require.NoError(t, st.CreateRecording(ctx, rec))
	require.NotZero(t, rec.ID)

	got, err := st.GetRecording(ctx, 1, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Filename, got.Filename)
	assert.Nil(t, got.Duration)

	// Ownership is part of the lookup key.
	_, err = st.GetRecording(ctx, 2, rec.ID)
	assert.ErrorIs(t, err, coach.ErrNotFound)

	require.NoError(t, st.SetRecordingDuration(ctx, rec.ID, 12.5))
	got, err = st.GetRecording(ctx, 1, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Duration)
	assert.Equal(t, 12.5, *got.Duration)

	assert.ErrorIs(t, st.SetRecordingDuration(ctx, 999, 1.0), coach.ErrNotFound)
}

func TestMemoryStoreReturnsClones(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	rec := &coach.Recording{UserID: 1, Filename: "a.wav"}
	require.NoError(t, st.CreateRecording(ctx, rec))

	got, err := st.GetRecording(ctx, 1, rec.ID)
	require.NoError(t, err)
	got.Filename = "mutated"

	again, err := st.GetRecording(ctx, 1, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.wav", again.Filename)
}

func TestMemoryStoreGetOrCreateAnalysis(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	first := &coach.AnalysisResult{RecordingID: 7, SpeechRate: 120}
	stored, created, err := st.GetOrCreateAnalysis(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, stored.ID)

	// A second write for the same recording observes the first row.
	second := &coach.AnalysisResult{RecordingID: 7, SpeechRate: 999}
	observed, created, err := st.GetOrCreateAnalysis(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.ID, observed.ID)
	assert.Equal(t, 120.0, observed.SpeechRate)

	got, err := st.GetAnalysisByRecording(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)

	_, err = st.GetAnalysisByRecording(ctx, 8)
	assert.ErrorIs(t, err, coach.ErrNotFound)
}

func TestMemoryStoreGetOrCreateAnalysisConcurrent(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	const workers = 16
	createdFlags := make([]bool, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, created, err := st.GetOrCreateAnalysis(ctx, &coach.AnalysisResult{RecordingID: 3})
			createdFlags[i] = created
			errs[i] = err
		}(i)
	}
	wg.Wait()

	createdCount := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if createdFlags[i] {
			createdCount++
		}
	}
	assert.Equal(t, 1, createdCount)
}

func TestMemoryStoreListSessionsJoins(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	require.NoError(t, st.UpsertTask(ctx, &coach.SpeakingTask{
		TaskID: "storytelling", Title: "Storytelling Challenge",
	}))

	rec := &coach.Recording{UserID: 1}
	require.NoError(t, st.CreateRecording(ctx, rec))

	analysis, _, err := st.GetOrCreateAnalysis(ctx, &coach.AnalysisResult{
		RecordingID: rec.ID, SpeechRate: 140,
	})
	require.NoError(t, err)

	assessment := &coach.SelfAssessment{
		UserID: 1, RecordingID: rec.ID, TaskID: "storytelling",
		Confidence: 8, Clarity: 6, Pace: 7, AverageScore: 7.0,
	}
	require.NoError(t, st.CreateAssessment(ctx, assessment))

	require.NoError(t, st.CreateSession(ctx, &coach.ProgressSession{
		UserID:       1,
		RecordingID:  rec.ID,
		AssessmentID: &assessment.ID,
		AnalysisID:   &analysis.ID,
		SessionDate:  time.Now(),
	}))

	// A session belonging to another user stays invisible.
	require.NoError(t, st.CreateSession(ctx, &coach.ProgressSession{
		UserID: 2, RecordingID: rec.ID, SessionDate: time.Now(),
	}))

	views, err := st.ListSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	require.NotNil(t, v.Assessment)
	assert.Equal(t, 7.0, v.Assessment.AverageScore)
	assert.Equal(t, "Storytelling Challenge", v.TaskTitle)
	require.NotNil(t, v.Analysis)
	assert.Equal(t, 140.0, v.Analysis.SpeechRate)
}

func TestMemoryStoreTopicUpsertDeduplicates(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	a := &coach.ImpromptuTopic{Topic: "Describe your dream job", Active: true}
	require.NoError(t, st.UpsertTopic(ctx, a))
	firstID := a.ID

	b := &coach.ImpromptuTopic{Topic: "Describe your dream job", Active: true}
	require.NoError(t, st.UpsertTopic(ctx, b))
	assert.Equal(t, firstID, b.ID)

	topics, err := st.ListActiveTopics(ctx)
	require.NoError(t, err)
	assert.Len(t, topics, 1)
}

func TestMemoryStoreTaskOrderIsStable(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, st.UpsertTask(ctx, &coach.SpeakingTask{TaskID: id}))
	}

	tasks, err := st.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "c", tasks[0].TaskID)
	assert.Equal(t, "a", tasks[1].TaskID)
	assert.Equal(t, "b", tasks[2].TaskID)
}
