package tiered

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/recording"
)

// RecordingStore exposes the recordings document as typed records.
type RecordingStore struct {
	docs *Store
}

var _ recording.Store = (*RecordingStore)(nil)

func NewRecordingStore(docs *Store) *RecordingStore { return &RecordingStore{docs: docs} }

func (s *RecordingStore) LoadRecordings(ctx context.Context, forceRefresh bool) ([]recording.RecordingLink, error) {
	data, _, err := s.docs.Load(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []recording.RecordingLink{}, nil
	}
	var recordings []recording.RecordingLink
	if err := json.Unmarshal(data, &recordings); err != nil {
		return nil, errors.Wrap(err, "decoding recordings document")
	}
	if recordings == nil {
		recordings = []recording.RecordingLink{}
	}
	return recordings, nil
}

func (s *RecordingStore) ReplaceRecordings(ctx context.Context, recordings []recording.RecordingLink, message string) (core.SyncOutcome, error) {
	if recordings == nil {
		recordings = []recording.RecordingLink{}
	}
	data, err := json.MarshalIndent(recordings, "", "  ")
	if err != nil {
		return core.SyncOutcome{}, errors.Wrap(err, "encoding recordings document")
	}
	return s.docs.Save(ctx, append(data, '\n'), message)
}

func (s *RecordingStore) DeleteAllRecordings(ctx context.Context, message string) (core.SyncOutcome, error) {
	return s.docs.DeleteAll(ctx, message)
}
