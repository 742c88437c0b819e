// Package inmem provides in-memory store implementations for tests and for
// running the API without any persistence configured.
package inmem

import (
	"context"
	"sync"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/lesson"
	"github.com/mirpeset/mirpeset/core/recording"
	"github.com/mirpeset/mirpeset/core/zman"
)

type LessonStore struct {
	mu      sync.RWMutex
	lessons []lesson.Lesson
	// Messages records the change descriptions of every replace, newest
	// last. Tests assert on them.
	Messages []string
	// FailRemote makes writes report an unsynced outcome, mimicking an
	// unreachable remote tier.
	FailRemote bool
}

var _ lesson.Store = (*LessonStore)(nil)

func NewLessonStore(seed ...lesson.Lesson) *LessonStore {
	return &LessonStore{lessons: append([]lesson.Lesson{}, seed...)}
}

func (s *LessonStore) LoadLessons(ctx context.Context, forceRefresh bool) ([]lesson.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]lesson.Lesson{}, s.lessons...), nil
}

func (s *LessonStore) ReplaceLessons(ctx context.Context, lessons []lesson.Lesson, message string) (core.SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lessons = append([]lesson.Lesson{}, lessons...)
	s.Messages = append(s.Messages, message)
	if s.FailRemote {
		return core.SyncOutcome{RemoteSynced: false, Version: "local-save"}, nil
	}
	return core.SyncOutcome{RemoteSynced: true, Version: "inmem"}, nil
}

func (s *LessonStore) DeleteAllLessons(ctx context.Context, message string) (core.SyncOutcome, error) {
	return s.ReplaceLessons(ctx, nil, message)
}

type RecordingStore struct {
	mu         sync.RWMutex
	recordings []recording.RecordingLink
	Messages   []string
}

var _ recording.Store = (*RecordingStore)(nil)

func NewRecordingStore(seed ...recording.RecordingLink) *RecordingStore {
	return &RecordingStore{recordings: append([]recording.RecordingLink{}, seed...)}
}

func (s *RecordingStore) LoadRecordings(ctx context.Context, forceRefresh bool) ([]recording.RecordingLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]recording.RecordingLink{}, s.recordings...), nil
}

func (s *RecordingStore) ReplaceRecordings(ctx context.Context, recordings []recording.RecordingLink, message string) (core.SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordings = append([]recording.RecordingLink{}, recordings...)
	s.Messages = append(s.Messages, message)
	return core.SyncOutcome{RemoteSynced: true, Version: "inmem"}, nil
}

func (s *RecordingStore) DeleteAllRecordings(ctx context.Context, message string) (core.SyncOutcome, error) {
	return s.ReplaceRecordings(ctx, nil, message)
}

type ZmanStore struct {
	mu     sync.RWMutex
	zmanim []zman.Zman
	Saves  int
}

var _ zman.Store = (*ZmanStore)(nil)

func NewZmanStore(seed ...zman.Zman) *ZmanStore {
	return &ZmanStore{zmanim: append([]zman.Zman{}, seed...)}
}

func (s *ZmanStore) LoadZmanim(ctx context.Context) ([]zman.Zman, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]zman.Zman{}, s.zmanim...), nil
}

func (s *ZmanStore) SaveZmanim(ctx context.Context, zmanim []zman.Zman) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zmanim = append([]zman.Zman{}, zmanim...)
	s.Saves++
	return nil
}
