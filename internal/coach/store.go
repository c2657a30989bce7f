package coach

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when a record does not exist or is
// not owned by the requesting user.
var ErrNotFound = errors.New("record not found")

// Store is the persistence contract the service depends on. Both the
// pgx-backed store and the in-memory store satisfy it.
type Store interface {
	// Recordings
	CreateRecording(ctx context.Context, rec *Recording) error
	GetRecording(ctx context.Context, userID, recordingID int64) (*Recording, error)
	SetRecordingDuration(ctx context.Context, recordingID int64, seconds float64) error

	// Analyses. GetOrCreateAnalysis must guarantee at most one stored
	// analysis per recording even under concurrent callers: the loser
	// observes the winner's row. The returned bool reports whether the
	// given analysis was inserted.
	GetOrCreateAnalysis(ctx context.Context, res *AnalysisResult) (*AnalysisResult, bool, error)
	GetAnalysisByRecording(ctx context.Context, recordingID int64) (*AnalysisResult, error)

	// Assessments and sessions
	CreateAssessment(ctx context.Context, a *SelfAssessment) error
	CreateSession(ctx context.Context, s *ProgressSession) error
	ListSessions(ctx context.Context, userID int64) ([]SessionView, error)

	// Task and topic catalog
	UpsertTask(ctx context.Context, t *SpeakingTask) error
	GetTask(ctx context.Context, taskID string) (*SpeakingTask, error)
	ListTasks(ctx context.Context) ([]SpeakingTask, error)
	UpsertTopic(ctx context.Context, t *ImpromptuTopic) error
	ListActiveTopics(ctx context.Context) ([]ImpromptuTopic, error)

	Close() error
}
