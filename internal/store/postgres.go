// Package store provides the persistence implementations behind the
// coach.Store interface: a pgx-backed PostgreSQL store for deployments
// and an in-memory store for tests and store-less CLI runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/speakbetter/speech-coach/internal/coach"
)

// Schema is the SQL DDL for the speech-coach tables. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS recordings (
    id                BIGSERIAL PRIMARY KEY,
    user_id           BIGINT NOT NULL,
    task_id           TEXT NOT NULL DEFAULT '',
    filename          TEXT NOT NULL,
    original_filename TEXT NOT NULL DEFAULT '',
    file_path         TEXT NOT NULL,
    uploaded_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    file_size         BIGINT NOT NULL DEFAULT 0,
    duration          DOUBLE PRECISION,
    scene             TEXT NOT NULL DEFAULT 'small-audience',
    topic             TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_recordings_user ON recordings(user_id);

CREATE TABLE IF NOT EXISTS analyses (
    id                BIGSERIAL PRIMARY KEY,
    recording_id      BIGINT NOT NULL UNIQUE REFERENCES recordings(id) ON DELETE CASCADE,
    duration          DOUBLE PRECISION NOT NULL DEFAULT 0,
    speech_rate       DOUBLE PRECISION NOT NULL DEFAULT 0,
    pause_count       INTEGER NOT NULL DEFAULT 0,
    volume_variation  DOUBLE PRECISION NOT NULL DEFAULT 0,
    pitch_variation   DOUBLE PRECISION NOT NULL DEFAULT 0,
    energy_level      DOUBLE PRECISION NOT NULL DEFAULT 0,
    detailed_analysis JSONB NOT NULL DEFAULT '{}',
    analyzed_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assessments (
    id            BIGSERIAL PRIMARY KEY,
    user_id       BIGINT NOT NULL,
    recording_id  BIGINT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
    task_id       TEXT NOT NULL DEFAULT '',
    confidence    INTEGER NOT NULL,
    clarity       INTEGER NOT NULL,
    pace          INTEGER NOT NULL,
    reflection    TEXT NOT NULL DEFAULT '',
    average_score DOUBLE PRECISION NOT NULL,
    submitted_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_assessments_user ON assessments(user_id);

CREATE TABLE IF NOT EXISTS progress_sessions (
    id            BIGSERIAL PRIMARY KEY,
    user_id       BIGINT NOT NULL,
    recording_id  BIGINT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
    assessment_id BIGINT REFERENCES assessments(id) ON DELETE CASCADE,
    analysis_id   BIGINT REFERENCES analyses(id) ON DELETE CASCADE,
    session_date  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_progress_sessions_user ON progress_sessions(user_id, session_date);

CREATE TABLE IF NOT EXISTS speaking_tasks (
    task_id      TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    instructions TEXT NOT NULL DEFAULT '',
    time_limit   INTEGER NOT NULL DEFAULT 3,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS impromptu_topics (
    id               BIGSERIAL PRIMARY KEY,
    topic            TEXT NOT NULL UNIQUE,
    category         TEXT NOT NULL DEFAULT 'general',
    difficulty_level TEXT NOT NULL DEFAULT 'medium',
    is_active        BOOLEAN NOT NULL DEFAULT true
);
`

// DB is the database interface used by [PostgresStore]. Both
// *pgxpool.Pool and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [coach.Store] backed by PostgreSQL.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ coach.Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store over the given connection or pool.
// The caller is responsible for calling [PostgresStore.Migrate] before
// issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL, creating tables and indexes if
// they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Close is a no-op; connection lifecycle belongs to the caller that
// built the pool.
func (s *PostgresStore) Close() error { return nil }

func (s *PostgresStore) CreateRecording(ctx context.Context, rec *coach.Recording) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO recordings
			(user_id, task_id, filename, original_filename, file_path,
			 uploaded_at, file_size, duration, scene, topic)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		rec.UserID, rec.TaskID, rec.Filename, rec.OriginalFilename, rec.FilePath,
		rec.UploadedAt, rec.FileSize, rec.Duration, rec.Scene, rec.Topic,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("store: create recording: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRecording(ctx context.Context, userID, recordingID int64) (*coach.Recording, error) {
	rec := &coach.Recording{}
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, task_id, filename, original_filename, file_path,
		       uploaded_at, file_size, duration, scene, topic
		FROM recordings
		WHERE id = $1 AND user_id = $2`,
		recordingID, userID,
	).Scan(&rec.ID, &rec.UserID, &rec.TaskID, &rec.Filename, &rec.OriginalFilename,
		&rec.FilePath, &rec.UploadedAt, &rec.FileSize, &rec.Duration, &rec.Scene, &rec.Topic)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, coach.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get recording: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) SetRecordingDuration(ctx context.Context, recordingID int64, seconds float64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE recordings SET duration = $1 WHERE id = $2`,
		seconds, recordingID)
	if err != nil {
		return fmt.Errorf("store: set recording duration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return coach.ErrNotFound
	}
	return nil
}

// GetOrCreateAnalysis inserts the candidate analysis unless the
// recording already has one. The UNIQUE constraint on recording_id plus
// ON CONFLICT DO NOTHING make the operation race-free: of two
// concurrent callers exactly one inserts and both observe that row.
func (s *PostgresStore) GetOrCreateAnalysis(ctx context.Context, res *coach.AnalysisResult) (*coach.AnalysisResult, bool, error) {
	detailed, err := json.Marshal(res.DetailedAnalysis)
	if err != nil {
		return nil, false, fmt.Errorf("store: marshal detailed_analysis: %w", err)
	}

	var id int64
	err = s.db.QueryRow(ctx, `
		INSERT INTO analyses
			(recording_id, duration, speech_rate, pause_count,
			 volume_variation, pitch_variation, energy_level,
			 detailed_analysis, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (recording_id) DO NOTHING
		RETURNING id`,
		res.RecordingID, res.Duration, res.SpeechRate, res.PauseCount,
		res.VolumeVariation, res.PitchVariation, res.EnergyLevel,
		detailed, res.AnalyzedAt,
	).Scan(&id)

	if err == nil {
		created := *res
		created.ID = id
		return &created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("store: create analysis: %w", err)
	}

	existing, err := s.GetAnalysisByRecording(ctx, res.RecordingID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *PostgresStore) GetAnalysisByRecording(ctx context.Context, recordingID int64) (*coach.AnalysisResult, error) {
	res := &coach.AnalysisResult{}
	var detailed []byte
	err := s.db.QueryRow(ctx, `
		SELECT id, recording_id, duration, speech_rate, pause_count,
		       volume_variation, pitch_variation, energy_level,
		       detailed_analysis, analyzed_at
		FROM analyses
		WHERE recording_id = $1`,
		recordingID,
	).Scan(&res.ID, &res.RecordingID, &res.Duration, &res.SpeechRate, &res.PauseCount,
		&res.VolumeVariation, &res.PitchVariation, &res.EnergyLevel,
		&detailed, &res.AnalyzedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, coach.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get analysis: %w", err)
	}
	if len(detailed) > 0 {
		if err := json.Unmarshal(detailed, &res.DetailedAnalysis); err != nil {
			return nil, fmt.Errorf("store: unmarshal detailed_analysis: %w", err)
		}
	}
	return res, nil
}

func (s *PostgresStore) CreateAssessment(ctx context.Context, a *coach.SelfAssessment) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO assessments
			(user_id, recording_id, task_id, confidence, clarity, pace,
			 reflection, average_score, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		a.UserID, a.RecordingID, a.TaskID, a.Confidence, a.Clarity, a.Pace,
		a.Reflection, a.AverageScore, a.SubmittedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("store: create assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, sess *coach.ProgressSession) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO progress_sessions
			(user_id, recording_id, assessment_id, analysis_id, session_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		sess.UserID, sess.RecordingID, sess.AssessmentID, sess.AnalysisID, sess.SessionDate,
	).Scan(&sess.ID)
	if err != nil {
		return fmt.Errorf("store: create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSessions(ctx context.Context, userID int64) ([]coach.SessionView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ps.id, ps.user_id, ps.recording_id, ps.assessment_id, ps.analysis_id, ps.session_date,
		       a.id, a.user_id, a.recording_id, a.task_id, a.confidence, a.clarity, a.pace,
		       a.reflection, a.average_score, a.submitted_at,
		       an.id, an.recording_id, an.duration, an.speech_rate, an.pause_count,
		       an.volume_variation, an.pitch_variation, an.energy_level, an.analyzed_at,
		       COALESCE(t.title, '')
		FROM progress_sessions ps
		LEFT JOIN assessments a ON a.id = ps.assessment_id
		LEFT JOIN analyses an ON an.id = ps.analysis_id
		LEFT JOIN speaking_tasks t ON t.task_id = a.task_id
		WHERE ps.user_id = $1
		ORDER BY ps.session_date DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	defer rows.Close()

	var views []coach.SessionView
	for rows.Next() {
		var v coach.SessionView
		var (
			aID         *int64
			aUserID     *int64
			aRecID      *int64
			aTaskID     *string
			aConfidence *int
			aClarity    *int
			aPace       *int
			aReflection *string
			aScore      *float64
			aSubmitted  *time.Time

			anID       *int64
			anRecID    *int64
			anDuration *float64
			anRate     *float64
			anPauses   *int
			anVolume   *float64
			anPitch    *float64
			anEnergy   *float64
			anAt       *time.Time
		)

		err := rows.Scan(
			&v.Session.ID, &v.Session.UserID, &v.Session.RecordingID,
			&v.Session.AssessmentID, &v.Session.AnalysisID, &v.Session.SessionDate,
			&aID, &aUserID, &aRecID, &aTaskID, &aConfidence, &aClarity, &aPace,
			&aReflection, &aScore, &aSubmitted,
			&anID, &anRecID, &anDuration, &anRate, &anPauses,
			&anVolume, &anPitch, &anEnergy, &anAt,
			&v.TaskTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("store: scan session: %w", err)
		}

		if aID != nil {
			v.Assessment = &coach.SelfAssessment{
				ID:           *aID,
				UserID:       *aUserID,
				RecordingID:  *aRecID,
				TaskID:       *aTaskID,
				Confidence:   *aConfidence,
				Clarity:      *aClarity,
				Pace:         *aPace,
				Reflection:   *aReflection,
				AverageScore: *aScore,
				SubmittedAt:  *aSubmitted,
			}
		}
		if anID != nil {
			v.Analysis = &coach.AnalysisResult{
				ID:              *anID,
				RecordingID:     *anRecID,
				Duration:        *anDuration,
				SpeechRate:      *anRate,
				PauseCount:      *anPauses,
				VolumeVariation: *anVolume,
				PitchVariation:  *anPitch,
				EnergyLevel:     *anEnergy,
				AnalyzedAt:      *anAt,
			}
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	return views, nil
}

func (s *PostgresStore) UpsertTask(ctx context.Context, t *coach.SpeakingTask) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO speaking_tasks (task_id, title, description, instructions, time_limit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (task_id) DO NOTHING`,
		t.TaskID, t.Title, t.Description, t.Instructions, t.TimeLimit)
	if err != nil {
		return fmt.Errorf("store: upsert task: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTask(ctx context.Context, taskID string) (*coach.SpeakingTask, error) {
	t := &coach.SpeakingTask{}
	err := s.db.QueryRow(ctx, `
		SELECT task_id, title, description, instructions, time_limit, created_at
		FROM speaking_tasks WHERE task_id = $1`,
		taskID,
	).Scan(&t.TaskID, &t.Title, &t.Description, &t.Instructions, &t.TimeLimit, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, coach.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get task: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) ListTasks(ctx context.Context) ([]coach.SpeakingTask, error) {
	rows, err := s.db.Query(ctx, `
		SELECT task_id, title, description, instructions, time_limit, created_at
		FROM speaking_tasks ORDER BY created_at, task_id`)
	if err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []coach.SpeakingTask
	for rows.Next() {
		var t coach.SpeakingTask
		if err := rows.Scan(&t.TaskID, &t.Title, &t.Description, &t.Instructions,
			&t.TimeLimit, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *PostgresStore) UpsertTopic(ctx context.Context, t *coach.ImpromptuTopic) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO impromptu_topics (topic, category, difficulty_level, is_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (topic) DO UPDATE SET topic = EXCLUDED.topic
		RETURNING id`,
		t.Topic, t.Category, t.Difficulty, t.Active,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("store: upsert topic: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActiveTopics(ctx context.Context) ([]coach.ImpromptuTopic, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, topic, category, difficulty_level, is_active
		FROM impromptu_topics WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list topics: %w", err)
	}
	defer rows.Close()

	var topics []coach.ImpromptuTopic
	for rows.Next() {
		var t coach.ImpromptuTopic
		if err := rows.Scan(&t.ID, &t.Topic, &t.Category, &t.Difficulty, &t.Active); err != nil {
			return nil, fmt.Errorf("store: scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}
