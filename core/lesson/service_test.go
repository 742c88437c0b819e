package lesson_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/lesson"
	"github.com/mirpeset/mirpeset/storage/inmem"
)

var defaultReminders = []int{30, 10}

func testService(clock core.Clock, seed ...lesson.Lesson) (*lesson.Service, *inmem.LessonStore) {
	store := inmem.NewLessonStore(seed...)
	logger := core.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	return lesson.NewService(store, clock, logger, defaultReminders), store
}

func testClock() *core.FixedClock {
	return &core.FixedClock{Time: time.Date(2026, 1, 15, 12, 0, 0, 0, time.Local)}
}

func localDate(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, store := testService(testClock())

	lsn, outcome, err := svc.Create(ctx, lesson.NewLesson{
		Title: "שיעור אמונה",
		Date:  localDate(2026, 2, 1, 20, 0),
		Time:  "20:00",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, lsn.ID)
	assert.Equal(t, lesson.StatusScheduled, lsn.Status)
	assert.Equal(t, 90, lsn.Duration, "default duration")
	assert.Equal(t, lesson.CategoryFridayKollel, lsn.Category, "suggested category")
	assert.True(t, lsn.Notifications.Enabled)
	assert.Equal(t, defaultReminders, lsn.Notifications.ReminderTimes)
	assert.True(t, outcome.RemoteSynced)

	require.Len(t, store.Messages, 1)
	assert.Equal(t, "הוספת שיעור חדש: שיעור אמונה", store.Messages[0])
}

func TestService_Create_validation(t *testing.T) {
	ctx := context.Background()
	svc, store := testService(testClock())

	_, _, err := svc.Create(ctx, lesson.NewLesson{Title: "חסר תאריך"})
	require.Error(t, err)
	assert.Empty(t, store.Messages, "nothing persisted")

	_, _, err = svc.Create(ctx, lesson.NewLesson{
		Title: "שעה שגויה",
		Date:  localDate(2026, 2, 1, 20, 0),
		Time:  "25:00",
	})
	require.Error(t, err)

	_, _, err = svc.Create(ctx, lesson.NewLesson{
		Title:    "קטגוריה שגויה",
		Date:     localDate(2026, 2, 1, 20, 0),
		Time:     "20:00",
		Category: "לא קיימת",
	})
	require.Error(t, err)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	clock := testClock()
	svc, store := testService(clock)

	lsn, _, err := svc.Create(ctx, lesson.NewLesson{
		Title: "שיעור", Date: localDate(2026, 2, 1, 20, 0), Time: "20:00",
	})
	require.NoError(t, err)

	desc := "תיאור חדש"
	updated, _, err := svc.Update(ctx, lsn.ID, lesson.UpdateLesson{
		Title:       "שיעור מעודכן",
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "שיעור מעודכן", updated.Title)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, "20:00", updated.Time, "untouched fields keep their values")

	require.Len(t, store.Messages, 2)
	assert.Equal(t, "עדכון שיעור: שיעור מעודכן", store.Messages[1])

	_, _, err = svc.Update(ctx, "no-such-id", lesson.UpdateLesson{Title: "x"})
	assert.Equal(t, lesson.ErrNotFound, err)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, store := testService(testClock())

	lsn, _, err := svc.Create(ctx, lesson.NewLesson{
		Title: "למחיקה", Date: localDate(2026, 2, 1, 20, 0), Time: "20:00",
	})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, lsn.ID)
	require.NoError(t, err)
	assert.Equal(t, "מחיקת שיעור: למחיקה", store.Messages[len(store.Messages)-1])

	_, err = svc.GetByID(ctx, lsn.ID)
	assert.Equal(t, lesson.ErrNotFound, err)

	_, err = svc.Delete(ctx, lsn.ID)
	assert.Equal(t, lesson.ErrNotFound, err)
}

func TestService_DeleteAll(t *testing.T) {
	ctx := context.Background()
	svc, store := testService(testClock())

	_, _, err := svc.Create(ctx, lesson.NewLesson{
		Title: "שיעור", Date: localDate(2026, 2, 1, 20, 0), Time: "20:00",
	})
	require.NoError(t, err)

	_, err = svc.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "מחיקת כל השיעורים", store.Messages[len(store.Messages)-1])

	lessons, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, lessons)
}

func TestService_UpcomingAndPast(t *testing.T) {
	ctx := context.Background()
	clock := testClock()

	past := lesson.Lesson{ID: "a", Title: "עבר", Date: clock.Time.AddDate(0, 0, -7), Time: "20:00", Duration: 90, Status: lesson.StatusScheduled}
	soon := lesson.Lesson{ID: "b", Title: "קרוב", Date: clock.Time.AddDate(0, 0, 1), Time: "20:00", Duration: 90, Status: lesson.StatusScheduled}
	later := lesson.Lesson{ID: "c", Title: "רחוק", Date: clock.Time.AddDate(0, 0, 14), Time: "20:00", Duration: 90, Status: lesson.StatusScheduled}
	cancelled := lesson.Lesson{ID: "d", Title: "בוטל", Date: clock.Time.AddDate(0, 0, 2), Time: "20:00", Duration: 90, Status: lesson.StatusCancelled}

	svc, _ := testService(clock, later, past, cancelled, soon)

	upcoming, err := svc.Upcoming(ctx)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "b", upcoming[0].ID, "soonest first")
	assert.Equal(t, "c", upcoming[1].ID)

	pastLessons, err := svc.Past(ctx)
	require.NoError(t, err)
	require.Len(t, pastLessons, 1)
	assert.Equal(t, "a", pastLessons[0].ID)
	// the elapsed scheduled lesson reads as completed
	assert.Equal(t, lesson.StatusCompleted, pastLessons[0].Status)
}

func TestService_CompleteElapsed(t *testing.T) {
	ctx := context.Background()
	clock := testClock()

	elapsed := lesson.Lesson{ID: "a", Title: "עבר", Date: clock.Time.AddDate(0, 0, -1), Time: "20:00", Duration: 90, Status: lesson.StatusScheduled}
	future := lesson.Lesson{ID: "b", Title: "עתידי", Date: clock.Time.AddDate(0, 0, 1), Time: "20:00", Duration: 90, Status: lesson.StatusScheduled}

	svc, store := testService(clock, elapsed, future)

	changed, err := svc.CompleteElapsed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, "סימון 1 שיעורים שהסתיימו", store.Messages[0])

	// idempotent: a second sweep writes nothing
	changed, err = svc.CompleteElapsed(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
	assert.Len(t, store.Messages, 1)
}

func TestService_FixCategories(t *testing.T) {
	ctx := context.Background()
	clock := testClock()

	wrong := lesson.Lesson{ID: "a", Title: "הלכות חנוכה", Category: lesson.CategoryTanach, Date: clock.Time, Time: "20:00", Status: lesson.StatusScheduled}
	right := lesson.Lesson{ID: "b", Title: "עבודת התפילה", Category: lesson.CategoryAvodah, Date: clock.Time, Time: "20:00", Status: lesson.StatusScheduled}

	svc, store := testService(clock, wrong, right)

	changed, _, err := svc.FixCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	fixed, err := svc.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, lesson.CategorySpecialEvents, fixed.Category)

	// second run is a no-op
	changed, _, err = svc.FixCategories(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
	assert.Len(t, store.Messages, 1)
}

func TestService_Import(t *testing.T) {
	ctx := context.Background()
	clock := testClock()

	existing := lesson.Lesson{ID: "a", Title: "קיים", Date: localDate(2026, 2, 1, 20, 0), Time: "20:00", Duration: 90, Status: lesson.StatusScheduled}
	svc, store := testService(clock, existing)

	drafts := []lesson.Draft{
		{Title: "חדש", Date: localDate(2026, 2, 2, 20, 0), Time: "20:00"},
		{Title: "מתנגש", Date: localDate(2026, 2, 1, 20, 0), Time: "20:00"},
		{Title: "פגום", Err: "תאריך עברי דורש המרה ידנית"},
		{Title: "", Date: localDate(2026, 2, 3, 20, 0), Time: "20:00"},
	}

	report, outcome, err := svc.Import(ctx, drafts, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Conflicts, 1)
	assert.False(t, report.Conflicts[0].Replaced)
	assert.Equal(t, "a", report.Conflicts[0].Existing.ID)
	assert.True(t, outcome.RemoteSynced)
	assert.Equal(t, "ייבוא 1 שיעורים מקובץ", store.Messages[len(store.Messages)-1])

	// the skipped conflict left the existing lesson in place
	kept, err := svc.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "קיים", kept.Title)
}

func TestService_Import_replaceConflicts(t *testing.T) {
	ctx := context.Background()
	clock := testClock()

	existing := lesson.Lesson{ID: "a", Title: "קיים", Date: localDate(2026, 2, 1, 20, 0), Time: "20:00", Duration: 90, Status: lesson.StatusScheduled}
	svc, _ := testService(clock, existing)

	report, _, err := svc.Import(ctx, []lesson.Draft{
		{Title: "מחליף", Date: localDate(2026, 2, 1, 20, 0), Time: "20:00"},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Conflicts, 1)
	assert.True(t, report.Conflicts[0].Replaced)

	_, err = svc.GetByID(ctx, "a")
	assert.Equal(t, lesson.ErrNotFound, err)

	all, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "מחליף", all[0].Title)
}

func TestService_Import_nothingImportedNothingSaved(t *testing.T) {
	ctx := context.Background()
	svc, store := testService(testClock())

	report, outcome, err := svc.Import(ctx, []lesson.Draft{
		{Title: "פגום", Err: "bad"},
	}, false)
	require.NoError(t, err)
	assert.Zero(t, report.Imported)
	assert.Equal(t, 1, report.Failed)
	assert.Empty(t, store.Messages)
	assert.Equal(t, core.SyncOutcome{}, outcome)
}
