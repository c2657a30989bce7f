package store

import (
	"context"
	"sort"
	"sync"

	"github.com/speakbetter/speech-coach/internal/coach"
)

// MemoryStore is a mutex-guarded in-memory [coach.Store]. It backs the
// CLI when no database is configured and the service tests. Semantics
// match PostgresStore, including the at-most-one-analysis-per-recording
// guarantee under concurrent callers.
type MemoryStore struct {
	mu sync.Mutex

	nextID      int64
	recordings  map[int64]*coach.Recording
	analyses    map[int64]*coach.AnalysisResult // keyed by recording ID
	assessments map[int64]*coach.SelfAssessment
	sessions    []*coach.ProgressSession
	tasks       map[string]*coach.SpeakingTask
	taskOrder   []string
	topics      []*coach.ImpromptuTopic
}

var _ coach.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recordings:  make(map[int64]*coach.Recording),
		analyses:    make(map[int64]*coach.AnalysisResult),
		assessments: make(map[int64]*coach.SelfAssessment),
		tasks:       make(map[string]*coach.SpeakingTask),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) CreateRecording(_ context.Context, rec *coach.Recording) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextIDLocked()
	clone := *rec
	s.recordings[rec.ID] = &clone
	return nil
}

func (s *MemoryStore) GetRecording(_ context.Context, userID, recordingID int64) (*coach.Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recordings[recordingID]
	if !ok || rec.UserID != userID {
		return nil, coach.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (s *MemoryStore) SetRecordingDuration(_ context.Context, recordingID int64, seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recordings[recordingID]
	if !ok {
		return coach.ErrNotFound
	}
	d := seconds
	rec.Duration = &d
	return nil
}

func (s *MemoryStore) GetOrCreateAnalysis(_ context.Context, res *coach.AnalysisResult) (*coach.AnalysisResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.analyses[res.RecordingID]; ok {
		clone := *existing
		return &clone, false, nil
	}
	created := *res
	created.ID = s.nextIDLocked()
	s.analyses[res.RecordingID] = &created
	clone := created
	return &clone, true, nil
}

func (s *MemoryStore) GetAnalysisByRecording(_ context.Context, recordingID int64) (*coach.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.analyses[recordingID]
	if !ok {
		return nil, coach.ErrNotFound
	}
	clone := *res
	return &clone, nil
}

func (s *MemoryStore) CreateAssessment(_ context.Context, a *coach.SelfAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextIDLocked()
	clone := *a
	s.assessments[a.ID] = &clone
	return nil
}

func (s *MemoryStore) CreateSession(_ context.Context, sess *coach.ProgressSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.ID = s.nextIDLocked()
	clone := *sess
	s.sessions = append(s.sessions, &clone)
	return nil
}

func (s *MemoryStore) ListSessions(_ context.Context, userID int64) ([]coach.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var views []coach.SessionView
	for _, sess := range s.sessions {
		if sess.UserID != userID {
			continue
		}
		v := coach.SessionView{Session: *sess}
		if sess.AssessmentID != nil {
			if a, ok := s.assessments[*sess.AssessmentID]; ok {
				clone := *a
				v.Assessment = &clone
				if t, ok := s.tasks[a.TaskID]; ok {
					v.TaskTitle = t.Title
				}
			}
		}
		if sess.AnalysisID != nil {
			for _, an := range s.analyses {
				if an.ID == *sess.AnalysisID {
					clone := *an
					v.Analysis = &clone
					break
				}
			}
		}
		views = append(views, v)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Session.SessionDate.After(views[j].Session.SessionDate)
	})
	return views, nil
}

func (s *MemoryStore) UpsertTask(_ context.Context, t *coach.SpeakingTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.TaskID]; ok {
		return nil
	}
	clone := *t
	s.tasks[t.TaskID] = &clone
	s.taskOrder = append(s.taskOrder, t.TaskID)
	return nil
}

func (s *MemoryStore) GetTask(_ context.Context, taskID string) (*coach.SpeakingTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, coach.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (s *MemoryStore) ListTasks(_ context.Context) ([]coach.SpeakingTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := make([]coach.SpeakingTask, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		tasks = append(tasks, *s.tasks[id])
	}
	return tasks, nil
}

func (s *MemoryStore) UpsertTopic(_ context.Context, t *coach.ImpromptuTopic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.topics {
		if existing.Topic == t.Topic {
			t.ID = existing.ID
			return nil
		}
	}
	t.ID = s.nextIDLocked()
	clone := *t
	s.topics = append(s.topics, &clone)
	return nil
}

func (s *MemoryStore) ListActiveTopics(_ context.Context) ([]coach.ImpromptuTopic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var topics []coach.ImpromptuTopic
	for _, t := range s.topics {
		if t.Active {
			topics = append(topics, *t)
		}
	}
	return topics, nil
}
