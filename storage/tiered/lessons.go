package tiered

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/lesson"
)

// LessonStore exposes the lessons document as typed records.
type LessonStore struct {
	docs *Store
}

var _ lesson.Store = (*LessonStore)(nil)

func NewLessonStore(docs *Store) *LessonStore { return &LessonStore{docs: docs} }

func (s *LessonStore) LoadLessons(ctx context.Context, forceRefresh bool) ([]lesson.Lesson, error) {
	data, _, err := s.docs.Load(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []lesson.Lesson{}, nil
	}
	var lessons []lesson.Lesson
	if err := json.Unmarshal(data, &lessons); err != nil {
		return nil, errors.Wrap(err, "decoding lessons document")
	}
	if lessons == nil {
		lessons = []lesson.Lesson{}
	}
	return lessons, nil
}

func (s *LessonStore) ReplaceLessons(ctx context.Context, lessons []lesson.Lesson, message string) (core.SyncOutcome, error) {
	if lessons == nil {
		lessons = []lesson.Lesson{}
	}
	data, err := json.MarshalIndent(lessons, "", "  ")
	if err != nil {
		return core.SyncOutcome{}, errors.Wrap(err, "encoding lessons document")
	}
	return s.docs.Save(ctx, append(data, '\n'), message)
}

func (s *LessonStore) DeleteAllLessons(ctx context.Context, message string) (core.SyncOutcome, error) {
	return s.docs.DeleteAll(ctx, message)
}
