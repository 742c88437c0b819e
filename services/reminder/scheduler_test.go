package reminder

import (
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/lesson"
)

type fakeEmailService struct {
	mu   sync.Mutex
	msgs []*core.EmailMessage
}

func (f *fakeEmailService) SendMessages(messages ...*core.EmailMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, messages...)
}

func testScheduler() (*Scheduler, *fakeEmailService, *core.FixedClock) {
	conf := &core.Config{}
	conf.Admin.Emails = []string{"admin@mirpeset.com"}

	clock := &core.FixedClock{Time: time.Date(2026, 1, 15, 12, 0, 0, 0, time.Local)}
	email := &fakeEmailService{}
	logger := core.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	return NewScheduler(conf, clock, email, logger), email, clock
}

func lessonAt(start time.Time) lesson.Lesson {
	return lesson.Lesson{
		ID:            "a",
		Title:         "שיעור אמונה",
		Date:          start,
		Time:          start.Format("15:04"),
		Status:        lesson.StatusScheduled,
		Notifications: lesson.Notifications{Enabled: true, ReminderTimes: []int{30, 10}},
	}
}

func TestScheduler_ArmLesson(t *testing.T) {
	s, _, clock := testScheduler()
	defer s.CancelAll()

	armed := s.ArmLesson(lessonAt(clock.Time.Add(2 * time.Hour)))
	assert.Equal(t, 2, armed)
	assert.Equal(t, 2, s.Pending())

	// re-arming replaces, never stacks
	armed = s.ArmLesson(lessonAt(clock.Time.Add(2 * time.Hour)))
	assert.Equal(t, 2, armed)
	assert.Equal(t, 2, s.Pending())
}

func TestScheduler_ArmLesson_skipsElapsedOffsets(t *testing.T) {
	s, _, clock := testScheduler()
	defer s.CancelAll()

	// starts in 20 minutes: the 30-minute reminder is already in the past
	armed := s.ArmLesson(lessonAt(clock.Time.Add(20 * time.Minute)))
	assert.Equal(t, 1, armed)
}

func TestScheduler_ArmLesson_ignoresDisabledAndNonScheduled(t *testing.T) {
	s, _, clock := testScheduler()
	defer s.CancelAll()

	l := lessonAt(clock.Time.Add(2 * time.Hour))
	l.Notifications.Enabled = false
	assert.Zero(t, s.ArmLesson(l))

	l = lessonAt(clock.Time.Add(2 * time.Hour))
	l.Status = lesson.StatusCancelled
	assert.Zero(t, s.ArmLesson(l))
}

func TestScheduler_Cancel(t *testing.T) {
	s, _, clock := testScheduler()

	s.ArmLesson(lessonAt(clock.Time.Add(2 * time.Hour)))
	require.Equal(t, 2, s.Pending())

	s.Cancel("a")
	assert.Zero(t, s.Pending())
}

func TestScheduler_ArmAll(t *testing.T) {
	s, _, clock := testScheduler()
	defer s.CancelAll()

	l1 := lessonAt(clock.Time.Add(2 * time.Hour))
	l2 := lessonAt(clock.Time.Add(3 * time.Hour))
	l2.ID = "b"

	assert.Equal(t, 4, s.ArmAll([]lesson.Lesson{l1, l2}))

	// rebuilding from a shorter collection drops stale timers
	assert.Equal(t, 2, s.ArmAll([]lesson.Lesson{l1}))
	assert.Equal(t, 2, s.Pending())
}

func TestScheduler_SendReminder(t *testing.T) {
	s, email, clock := testScheduler()

	s.SendReminder(lessonAt(clock.Time.Add(30*time.Minute)), 30)
	require.Len(t, email.msgs, 1)
	msg := email.msgs[0]
	assert.Equal(t, "תזכורת: שיעור אמונה", msg.Subject)
	require.Len(t, msg.To, 1)
	assert.Equal(t, "admin@mirpeset.com", msg.To[0].Address)
	assert.Equal(t, "lesson-reminder", msg.TemplateName)

	s.SendReminder(lessonAt(clock.Time), 0)
	require.Len(t, email.msgs, 2)
	assert.Equal(t, "השיעור מתחיל עכשיו: שיעור אמונה", email.msgs[1].Subject)
}
