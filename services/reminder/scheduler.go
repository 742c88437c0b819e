// Package reminder arms one-shot timers for upcoming lessons and delivers a
// reminder email when each fires. The timer set is built once at startup and
// rebuilt from the current collection by the daily sweep, so restarts and
// same-day edits converge within a day; ArmLesson replaces a single lesson's
// timers for callers that need the refresh immediately.
package reminder

import (
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/lesson"
)

type (
	reminderData struct {
		Title       string
		Description string
		When        string
		Minutes     int
		StartsNow   bool
	}

	Scheduler struct {
		clock      core.Clock
		email      core.EmailService
		logger     core.Logger
		recipients []mail.Address

		mu    sync.Mutex
		tasks map[string][]*time.Timer // lesson ID -> pending timers
	}
)

func NewScheduler(conf *core.Config, clock core.Clock, email core.EmailService, logger core.Logger) *Scheduler {
	recipients := make([]mail.Address, 0, len(conf.Admin.Emails))
	for _, addr := range conf.Admin.Emails {
		recipients = append(recipients, mail.Address{Address: addr})
	}
	return &Scheduler{
		clock:      clock,
		email:      email,
		logger:     logger,
		recipients: recipients,
		tasks:      make(map[string][]*time.Timer),
	}
}

// ArmLesson replaces any pending timers for the lesson with fresh ones, one
// per reminder offset still in the future. Returns how many were armed.
func (s *Scheduler) ArmLesson(l lesson.Lesson) int {
	s.Cancel(l.ID)

	if l.Status != lesson.StatusScheduled || !l.Notifications.Enabled {
		return 0
	}

	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	armed := 0
	for _, minutes := range l.Notifications.ReminderTimes {
		minutes := minutes
		fireAt := l.Date.Add(-time.Duration(minutes) * time.Minute)
		delay := fireAt.Sub(now)
		if delay <= 0 {
			continue
		}
		l := l
		s.tasks[l.ID] = append(s.tasks[l.ID], time.AfterFunc(delay, func() {
			s.SendReminder(l, minutes)
		}))
		armed++
	}
	return armed
}

// ArmAll rebuilds the timer set from the full collection.
func (s *Scheduler) ArmAll(lessons []lesson.Lesson) int {
	s.CancelAll()
	armed := 0
	for _, l := range lessons {
		armed += s.ArmLesson(l)
	}
	if armed > 0 {
		s.logger.Info(fmt.Sprintf("reminder: armed %d timers for %d lessons", armed, len(lessons)))
	}
	return armed
}

// Cancel stops the pending timers of one lesson.
func (s *Scheduler) Cancel(lessonID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks[lessonID] {
		t.Stop()
	}
	delete(s.tasks, lessonID)
}

func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timers := range s.tasks {
		for _, t := range timers {
			t.Stop()
		}
		delete(s.tasks, id)
	}
}

// Pending reports how many timers are currently armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, timers := range s.tasks {
		n += len(timers)
	}
	return n
}

// SendReminder builds and sends the reminder message for one offset. A zero
// offset means the lesson is starting now.
func (s *Scheduler) SendReminder(l lesson.Lesson, minutes int) {
	if len(s.recipients) == 0 {
		return
	}
	subject := "תזכורת: " + l.Title
	if minutes == 0 {
		subject = "השיעור מתחיל עכשיו: " + l.Title
	}
	s.email.SendMessages(&core.EmailMessage{
		To:           s.recipients,
		Subject:      subject,
		TemplateName: "lesson-reminder",
		TemplateData: reminderData{
			Title:       l.Title,
			Description: l.Description,
			When:        l.Date.Format("02/01/2006") + " " + l.Time,
			Minutes:     minutes,
			StartsNow:   minutes == 0,
		},
	})
}
