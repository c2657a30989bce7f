package coach

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/speakbetter/speech-coach/internal/feedback"
	"github.com/speakbetter/speech-coach/internal/portable"
	"github.com/speakbetter/speech-coach/pkg/audio/analysis"
	"github.com/speakbetter/speech-coach/pkg/audio/decode"
	"github.com/speakbetter/speech-coach/pkg/logging"
)

// ErrNoTopics is returned by RandomTopic when the catalog is empty.
var ErrNoTopics = errors.New("no impromptu topics available")

// DefaultScene is the context label applied to uploads that specify none.
const DefaultScene = "small-audience"

// ServiceConfig holds service wiring options.
type ServiceConfig struct {
	// UploadDir receives stored recording files.
	UploadDir string

	// Rand drives topic selection. Inject a seeded source for
	// deterministic tests; nil gets a time-seeded default.
	Rand *rand.Rand
}

// Service runs the coaching pipeline: store uploads, analyze recordings,
// record assessments and serve progress history.
type Service struct {
	store     Store
	decoder   *decode.Decoder
	extractor *analysis.Extractor
	config    ServiceConfig
	logger    logging.Logger

	randMu sync.Mutex
}

// NewService wires a coaching service.
func NewService(store Store, decoder *decode.Decoder, config ServiceConfig) *Service {
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		store:     store,
		decoder:   decoder,
		extractor: analysis.NewExtractor(),
		config:    config,
		logger: logging.WithFields(logging.Fields{
			"component": "coach_service",
		}),
	}
}

// UploadInput carries one uploaded recording. The transport layer has
// already validated non-emptiness of the byte payload.
type UploadInput struct {
	UserID           int64
	TaskID           string
	OriginalFilename string
	Data             []byte
	ClaimedDuration  float64
	Scene            string
	Topic            string
}

// UploadRecording stores the audio bytes under the upload directory and
// creates the Recording record.
func (s *Service) UploadRecording(ctx context.Context, in UploadInput) (*Recording, error) {
	if in.UserID == 0 {
		return nil, &feedback.MissingFieldError{Field: "user_id"}
	}
	if len(in.Data) == 0 {
		return nil, &feedback.MissingFieldError{Field: "audio"}
	}

	scene := in.Scene
	if scene == "" {
		scene = DefaultScene
	}

	// Drop unknown task references rather than failing the upload.
	taskID := in.TaskID
	if taskID != "" {
		if _, err := s.store.GetTask(ctx, taskID); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("looking up task %q: %w", taskID, err)
			}
			taskID = ""
		}
	}

	ext := filepath.Ext(in.OriginalFilename)
	if ext == "" {
		ext = ".webm"
	}
	filename := fmt.Sprintf("recording_%d_%s_%s%s",
		in.UserID, time.Now().Format("20060102150405"), uuid.NewString()[:8], ext)

	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	path := filepath.Join(s.config.UploadDir, filename)
	if err := os.WriteFile(path, in.Data, 0o644); err != nil {
		return nil, fmt.Errorf("writing recording file: %w", err)
	}

	rec := &Recording{
		UserID:           in.UserID,
		TaskID:           taskID,
		Filename:         filename,
		OriginalFilename: in.OriginalFilename,
		FilePath:         path,
		UploadedAt:       time.Now().UTC(),
		FileSize:         int64(len(in.Data)),
		Scene:            scene,
		Topic:            in.Topic,
	}
	if in.ClaimedDuration > 0 {
		d := in.ClaimedDuration
		rec.Duration = &d
	}

	if err := s.store.CreateRecording(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating recording record: %w", err)
	}

	s.logger.Info("recording uploaded", logging.Fields{
		"recording_id": rec.ID,
		"user_id":      rec.UserID,
		"file_size":    rec.FileSize,
	})
	return rec, nil
}

// AnalyzeOutput is the result of analyzing one recording.
type AnalyzeOutput struct {
	Recording   *Recording         `json:"recording"`
	Analysis    map[string]any     `json:"analysis"`
	ChartData   map[string]float64 `json:"chart_data"`
	Suggestions []string           `json:"feedback"`

	// Created reports whether this call stored the analysis row, as
	// opposed to observing one stored earlier or concurrently.
	Created bool `json:"-"`
}

// AnalyzeRecording runs the full pipeline for one recording owned by
// userID: decode, extract, persist (at most one stored analysis per
// recording, even under concurrent calls), backfill the recording
// duration and generate feedback. A failure in any stage aborts the
// rest; nothing partial is persisted.
func (s *Service) AnalyzeRecording(ctx context.Context, userID, recordingID int64) (*AnalyzeOutput, error) {
	rec, err := s.store.GetRecording(ctx, userID, recordingID)
	if err != nil {
		return nil, fmt.Errorf("loading recording %d: %w", recordingID, err)
	}

	buf, err := s.decoder.DecodeFile(ctx, rec.FilePath)
	if err != nil {
		return nil, err
	}

	res, err := s.extractor.Analyze(buf)
	if err != nil {
		return nil, err
	}

	detailed, _ := portable.Scalars(res.Map()).(map[string]any)
	candidate := &AnalysisResult{
		RecordingID:      rec.ID,
		Duration:         res.Duration,
		SpeechRate:       res.SpeechRate,
		PauseCount:       res.PauseCount,
		VolumeVariation:  res.VolumeVariation,
		PitchVariation:   res.PitchVariation,
		EnergyLevel:      res.EnergyLevel,
		DetailedAnalysis: detailed,
		AnalyzedAt:       time.Now().UTC(),
	}

	stored, created, err := s.store.GetOrCreateAnalysis(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("persisting analysis for recording %d: %w", rec.ID, err)
	}

	if rec.Duration == nil && stored.Duration > 0 {
		if err := s.store.SetRecordingDuration(ctx, rec.ID, stored.Duration); err != nil {
			return nil, fmt.Errorf("backfilling duration for recording %d: %w", rec.ID, err)
		}
		d := stored.Duration
		rec.Duration = &d
	}

	storedMetrics := &analysis.Result{
		Duration:        stored.Duration,
		SpeechRate:      stored.SpeechRate,
		PauseCount:      stored.PauseCount,
		VolumeVariation: stored.VolumeVariation,
		PitchVariation:  stored.PitchVariation,
		EnergyLevel:     stored.EnergyLevel,
	}
	report, err := feedback.Generate(storedMetrics)
	if err != nil {
		return nil, err
	}

	analysisMap, _ := portable.Scalars(storedMetrics.Map()).(map[string]any)

	s.logger.Info("recording analyzed", logging.Fields{
		"recording_id": rec.ID,
		"user_id":      userID,
		"created":      created,
		"speech_rate":  stored.SpeechRate,
		"pause_count":  stored.PauseCount,
	})

	return &AnalyzeOutput{
		Recording:   rec,
		Analysis:    analysisMap,
		ChartData:   report.ChartData,
		Suggestions: report.Suggestions,
		Created:     created,
	}, nil
}

// BatchResult pairs one recording of a batch with its outcome.
type BatchResult struct {
	RecordingID int64
	Output      *AnalyzeOutput
	Err         error
}

// AnalyzeBatch analyzes independent recordings concurrently, at most
// maxConcurrent at a time. Per-recording failures land in the result
// slice; they do not cancel the rest of the batch.
func (s *Service) AnalyzeBatch(ctx context.Context, userID int64, recordingIDs []int64, maxConcurrent int) []BatchResult {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	results := make([]BatchResult, len(recordingIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, id := range recordingIDs {
		i, id := i, id
		g.Go(func() error {
			out, err := s.AnalyzeRecording(ctx, userID, id)
			results[i] = BatchResult{RecordingID: id, Output: out, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// AssessmentInput carries one self-assessment submission.
type AssessmentInput struct {
	UserID      int64
	RecordingID int64
	TaskID      string
	Confidence  int
	Clarity     int
	Pace        int
	Reflection  string
}

// SubmitAssessment validates and stores a self-assessment, then creates
// the immutable progress session snapshot linking the recording, the
// assessment and the analysis (when one exists).
func (s *Service) SubmitAssessment(ctx context.Context, in AssessmentInput) (*SelfAssessment, error) {
	if in.UserID == 0 {
		return nil, &feedback.MissingFieldError{Field: "user_id"}
	}
	if in.RecordingID == 0 {
		return nil, &feedback.MissingFieldError{Field: "recording_id"}
	}
	if in.Reflection == "" {
		return nil, &feedback.MissingFieldError{Field: "reflection"}
	}

	rec, err := s.store.GetRecording(ctx, in.UserID, in.RecordingID)
	if err != nil {
		return nil, fmt.Errorf("loading recording %d: %w", in.RecordingID, err)
	}

	assessment, err := NewSelfAssessment(in.UserID, rec.ID, in.TaskID,
		in.Confidence, in.Clarity, in.Pace, in.Reflection)
	if err != nil {
		return nil, err
	}
	assessment.SubmittedAt = time.Now().UTC()

	if err := s.store.CreateAssessment(ctx, assessment); err != nil {
		return nil, fmt.Errorf("creating assessment: %w", err)
	}

	session := &ProgressSession{
		UserID:       in.UserID,
		RecordingID:  rec.ID,
		AssessmentID: &assessment.ID,
		SessionDate:  time.Now().UTC(),
	}
	if existing, err := s.store.GetAnalysisByRecording(ctx, rec.ID); err == nil {
		session.AnalysisID = &existing.ID
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("looking up analysis for recording %d: %w", rec.ID, err)
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating progress session: %w", err)
	}

	s.logger.Info("assessment submitted", logging.Fields{
		"recording_id":  rec.ID,
		"user_id":       in.UserID,
		"average_score": assessment.AverageScore,
	})
	return assessment, nil
}

// ListSessions returns the user's sessions as display entries, newest
// first.
func (s *Service) ListSessions(ctx context.Context, userID int64) ([]SessionSummary, error) {
	views, err := s.store.ListSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return SessionSummaries(views), nil
}

// MetricHistory returns the user's analyzed sessions as an
// oldest-first chart series.
func (s *Service) MetricHistory(ctx context.Context, userID int64) ([]MetricPoint, error) {
	views, err := s.store.ListSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return MetricHistory(views), nil
}

// Tasks lists the practice task catalog.
func (s *Service) Tasks(ctx context.Context) ([]SpeakingTask, error) {
	return s.store.ListTasks(ctx)
}

// Topics lists the active impromptu topics.
func (s *Service) Topics(ctx context.Context) ([]ImpromptuTopic, error) {
	return s.store.ListActiveTopics(ctx)
}

// RandomTopic picks one active impromptu topic uniformly at random.
func (s *Service) RandomTopic(ctx context.Context) (string, error) {
	topics, err := s.store.ListActiveTopics(ctx)
	if err != nil {
		return "", fmt.Errorf("listing topics: %w", err)
	}
	if len(topics) == 0 {
		return "", ErrNoTopics
	}

	s.randMu.Lock()
	idx := s.config.Rand.Intn(len(topics))
	s.randMu.Unlock()

	return topics[idx].Topic, nil
}
