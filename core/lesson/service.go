package lesson

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mirpeset/mirpeset/core"
)

var (
	// errors
	ErrNotFound = errors.New("lesson not found")
)

type (
	// Store produces and replaces the authoritative lesson collection.
	// Mutations always replace the full collection; there is no merge and
	// the last full-collection write wins (accepted limitation).
	Store interface {
		// LoadLessons resolves the current collection through the storage
		// tiers; forceRefresh bypasses the local cache.
		LoadLessons(ctx context.Context, forceRefresh bool) ([]Lesson, error)
		// ReplaceLessons persists the full collection, tagged with a
		// human-readable change description.
		ReplaceLessons(ctx context.Context, lessons []Lesson, message string) (core.SyncOutcome, error)
		// DeleteAllLessons clears the collection and sets a durable
		// sentinel so stale snapshots cannot repopulate it.
		DeleteAllLessons(ctx context.Context, message string) (core.SyncOutcome, error)
	}

	Service struct {
		store            Store
		clock            core.Clock
		logger           core.Logger
		defaultReminders []int
	}
)

func NewService(store Store, clock core.Clock, logger core.Logger, defaultReminders []int) *Service {
	return &Service{
		store:            store,
		clock:            clock,
		logger:           logger,
		defaultReminders: defaultReminders,
	}
}

// normalize applies the automatic scheduled->completed transition once a
// lesson's end time is in the past. Read-side only; the durable transition
// happens in CompleteElapsed.
func (svc *Service) normalize(lessons []Lesson) []Lesson {
	now := svc.clock.Now()
	for i, l := range lessons {
		if l.Status == StatusScheduled && l.Elapsed(now) {
			lessons[i].Status = StatusCompleted
		}
	}
	return lessons
}

func (svc *Service) QueryAll(ctx context.Context) ([]Lesson, error) {
	lessons, err := svc.store.LoadLessons(ctx, false)
	if err != nil {
		return nil, err
	}
	return svc.normalize(lessons), nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Lesson, error) {
	lessons, err := svc.QueryAll(ctx)
	if err != nil {
		return Lesson{}, err
	}
	for _, l := range lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return Lesson{}, ErrNotFound
}

// Upcoming lists scheduled lessons from now on, soonest first.
func (svc *Service) Upcoming(ctx context.Context) ([]Lesson, error) {
	lessons, err := svc.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	now := svc.clock.Now()
	out := make([]Lesson, 0, len(lessons))
	for _, l := range lessons {
		if !l.Date.Before(now) && l.Status == StatusScheduled {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Past lists elapsed or completed lessons, most recent first.
func (svc *Service) Past(ctx context.Context) ([]Lesson, error) {
	lessons, err := svc.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	now := svc.clock.Now()
	out := make([]Lesson, 0, len(lessons))
	for _, l := range lessons {
		if l.Date.Before(now) || l.Status == StatusCompleted {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Date.Before(out[i].Date) })
	return out, nil
}

// FindConflict returns the first lesson occupying the same calendar day and
// HH:MM slot, if any.
func FindConflict(lessons []Lesson, date time.Time, hhmm string) *Lesson {
	for i, l := range lessons {
		if l.SameSlot(date, hhmm) {
			return &lessons[i]
		}
	}
	return nil
}

func (svc *Service) newFromDraft(nl NewLesson) Lesson {
	now := svc.clock.Now()

	duration := nl.Duration
	if duration == 0 {
		duration = 90
	}
	category := nl.Category
	if category == "" {
		category = SuggestCategory(nl.Title)
	}
	notifications := Notifications{Enabled: true, ReminderTimes: svc.defaultReminders}
	if nl.Notifications != nil {
		notifications = *nl.Notifications
	}
	tags := nl.Tags
	if tags == nil {
		tags = []string{}
	}

	return Lesson{
		ID:            uuid.New().String(),
		Title:         nl.Title,
		Description:   nl.Description,
		Date:          nl.Date,
		Time:          nl.Time,
		Duration:      duration,
		Teacher:       nl.Teacher,
		Location:      nl.Location,
		Category:      category,
		Status:        StatusScheduled,
		Tags:          tags,
		Notifications: notifications,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (svc *Service) Create(ctx context.Context, nl NewLesson) (Lesson, core.SyncOutcome, error) {
	if err := nl.Validate(); err != nil {
		return Lesson{}, core.SyncOutcome{}, err
	}

	// always mutate a fresh full copy; a stale cache must not corrupt the
	// collection
	lessons, err := svc.store.LoadLessons(ctx, true)
	if err != nil {
		return Lesson{}, core.SyncOutcome{}, err
	}

	lsn := svc.newFromDraft(nl)
	lessons = append(lessons, lsn)

	outcome, err := svc.store.ReplaceLessons(ctx, lessons, fmt.Sprintf("הוספת שיעור חדש: %s", lsn.Title))
	if err != nil {
		return Lesson{}, outcome, err
	}
	return lsn, outcome, nil
}

func (svc *Service) Update(ctx context.Context, id string, ul UpdateLesson) (Lesson, core.SyncOutcome, error) {
	if err := ul.Validate(); err != nil {
		return Lesson{}, core.SyncOutcome{}, err
	}

	lessons, err := svc.store.LoadLessons(ctx, true)
	if err != nil {
		return Lesson{}, core.SyncOutcome{}, err
	}

	idx := -1
	for i, l := range lessons {
		if l.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Lesson{}, core.SyncOutcome{}, ErrNotFound
	}

	lsn := lessons[idx]
	if ul.Title != "" {
		lsn.Title = ul.Title
	}
	if ul.Description != nil {
		lsn.Description = *ul.Description
	}
	if !ul.Date.IsZero() {
		lsn.Date = ul.Date
	}
	if ul.Time != "" {
		lsn.Time = ul.Time
	}
	if ul.Duration != 0 {
		lsn.Duration = ul.Duration
	}
	if ul.Teacher != nil {
		lsn.Teacher = *ul.Teacher
	}
	if ul.Location != nil {
		lsn.Location = *ul.Location
	}
	if ul.Category != "" {
		lsn.Category = ul.Category
	}
	if ul.Status != "" {
		lsn.Status = ul.Status
	}
	if ul.Tags != nil {
		lsn.Tags = ul.Tags
	}
	if ul.Notifications != nil {
		lsn.Notifications = *ul.Notifications
	}
	lsn.UpdatedAt = svc.clock.Now()
	lessons[idx] = lsn

	outcome, err := svc.store.ReplaceLessons(ctx, lessons, fmt.Sprintf("עדכון שיעור: %s", lsn.Title))
	if err != nil {
		return Lesson{}, outcome, err
	}
	return lsn, outcome, nil
}

func (svc *Service) Delete(ctx context.Context, id string) (core.SyncOutcome, error) {
	lessons, err := svc.store.LoadLessons(ctx, true)
	if err != nil {
		return core.SyncOutcome{}, err
	}

	var title string
	kept := make([]Lesson, 0, len(lessons))
	for _, l := range lessons {
		if l.ID == id {
			title = l.Title
			continue
		}
		kept = append(kept, l)
	}
	if len(kept) == len(lessons) {
		return core.SyncOutcome{}, ErrNotFound
	}

	return svc.store.ReplaceLessons(ctx, kept, fmt.Sprintf("מחיקת שיעור: %s", title))
}

func (svc *Service) DeleteAll(ctx context.Context) (core.SyncOutcome, error) {
	return svc.store.DeleteAllLessons(ctx, "מחיקת כל השיעורים")
}

// FixCategories re-derives every category from the title keyword rules and
// saves once if anything changed. Backfill tool for collections imported
// before the rules existed.
func (svc *Service) FixCategories(ctx context.Context) (int, core.SyncOutcome, error) {
	lessons, err := svc.store.LoadLessons(ctx, true)
	if err != nil {
		return 0, core.SyncOutcome{}, err
	}

	var changed int
	for i, l := range lessons {
		if suggested := SuggestCategory(l.Title); l.Category != suggested {
			lessons[i].Category = suggested
			lessons[i].UpdatedAt = svc.clock.Now()
			changed++
		}
	}
	if changed == 0 {
		return 0, core.SyncOutcome{}, nil
	}

	outcome, err := svc.store.ReplaceLessons(ctx, lessons, fmt.Sprintf("תיקון קטגוריות עבור %d שיעורים", changed))
	if err != nil {
		return 0, outcome, err
	}
	return changed, outcome, nil
}

// CompleteElapsed durably marks elapsed scheduled lessons as completed and
// returns how many changed. Used by the periodic sweep.
func (svc *Service) CompleteElapsed(ctx context.Context) (int, error) {
	lessons, err := svc.store.LoadLessons(ctx, true)
	if err != nil {
		return 0, err
	}

	now := svc.clock.Now()
	var changed int
	for i, l := range lessons {
		if l.Status == StatusScheduled && l.Elapsed(now) {
			lessons[i].Status = StatusCompleted
			lessons[i].UpdatedAt = now
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}

	_, err = svc.store.ReplaceLessons(ctx, lessons, fmt.Sprintf("סימון %d שיעורים שהסתיימו", changed))
	if err != nil {
		return 0, err
	}
	return changed, nil
}
