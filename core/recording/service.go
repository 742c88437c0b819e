package recording

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mirpeset/mirpeset/core"
)

var (
	// errors
	ErrNotFound = errors.New("recording not found")
)

type (
	Store interface {
		LoadRecordings(ctx context.Context, forceRefresh bool) ([]RecordingLink, error)
		ReplaceRecordings(ctx context.Context, recordings []RecordingLink, message string) (core.SyncOutcome, error)
		DeleteAllRecordings(ctx context.Context, message string) (core.SyncOutcome, error)
	}

	Service struct {
		store Store
		clock core.Clock
	}
)

func NewService(store Store, clock core.Clock) *Service {
	return &Service{store: store, clock: clock}
}

func (svc *Service) QueryAll(ctx context.Context) ([]RecordingLink, error) {
	recordings, err := svc.store.LoadRecordings(ctx, false)
	if err != nil {
		return nil, err
	}
	for i, rec := range recordings {
		recordings[i].URL = FormatDriveURL(rec.URL)
	}
	return recordings, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (RecordingLink, error) {
	recordings, err := svc.QueryAll(ctx)
	if err != nil {
		return RecordingLink{}, err
	}
	for _, rec := range recordings {
		if rec.ID == id {
			return rec, nil
		}
	}
	return RecordingLink{}, ErrNotFound
}

// GetForLesson lists recordings referencing the lesson; dangling references
// elsewhere in the collection are fine.
func (svc *Service) GetForLesson(ctx context.Context, lessonID string) ([]RecordingLink, error) {
	recordings, err := svc.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RecordingLink, 0, len(recordings))
	for _, rec := range recordings {
		if rec.LessonID == lessonID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (svc *Service) Create(ctx context.Context, nr NewRecording) (RecordingLink, core.SyncOutcome, error) {
	if err := core.Validate.Struct(nr); err != nil {
		return RecordingLink{}, core.SyncOutcome{}, err
	}

	recordings, err := svc.store.LoadRecordings(ctx, true)
	if err != nil {
		return RecordingLink{}, core.SyncOutcome{}, err
	}

	rec := RecordingLink{
		ID:          uuid.New().String(),
		LessonID:    nr.LessonID,
		Title:       nr.Title,
		URL:         FormatDriveURL(nr.URL),
		Description: nr.Description,
		UploadDate:  svc.clock.Now().Format("2006-01-02"),
		FileSize:    nr.FileSize,
	}
	recordings = append(recordings, rec)

	outcome, err := svc.store.ReplaceRecordings(ctx, recordings, fmt.Sprintf("הוספת הקלטה חדשה: %s", rec.Title))
	if err != nil {
		return RecordingLink{}, outcome, err
	}
	return rec, outcome, nil
}

func (svc *Service) Update(ctx context.Context, id string, ur UpdateRecording) (RecordingLink, core.SyncOutcome, error) {
	if err := core.Validate.Struct(ur); err != nil {
		return RecordingLink{}, core.SyncOutcome{}, err
	}

	recordings, err := svc.store.LoadRecordings(ctx, true)
	if err != nil {
		return RecordingLink{}, core.SyncOutcome{}, err
	}

	idx := -1
	for i, rec := range recordings {
		if rec.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return RecordingLink{}, core.SyncOutcome{}, ErrNotFound
	}

	rec := recordings[idx]
	if ur.LessonID != nil {
		rec.LessonID = *ur.LessonID
	}
	if ur.Title != "" {
		rec.Title = ur.Title
	}
	if ur.URL != "" {
		rec.URL = FormatDriveURL(ur.URL)
	}
	if ur.Description != nil {
		rec.Description = *ur.Description
	}
	if ur.FileSize != nil {
		rec.FileSize = *ur.FileSize
	}
	rec.UploadDate = svc.clock.Now().Format("2006-01-02")
	recordings[idx] = rec

	outcome, err := svc.store.ReplaceRecordings(ctx, recordings, fmt.Sprintf("עדכון הקלטה: %s", rec.Title))
	if err != nil {
		return RecordingLink{}, outcome, err
	}
	return rec, outcome, nil
}

func (svc *Service) Delete(ctx context.Context, id string) (core.SyncOutcome, error) {
	recordings, err := svc.store.LoadRecordings(ctx, true)
	if err != nil {
		return core.SyncOutcome{}, err
	}

	var title string
	kept := make([]RecordingLink, 0, len(recordings))
	for _, rec := range recordings {
		if rec.ID == id {
			title = rec.Title
			continue
		}
		kept = append(kept, rec)
	}
	if len(kept) == len(recordings) {
		return core.SyncOutcome{}, ErrNotFound
	}

	return svc.store.ReplaceRecordings(ctx, kept, fmt.Sprintf("מחיקת הקלטה: %s", title))
}

func (svc *Service) DeleteAll(ctx context.Context) (core.SyncOutcome, error) {
	return svc.store.DeleteAllRecordings(ctx, "מחיקת כל ההקלטות")
}
