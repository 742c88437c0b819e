package lesson

import (
	"strings"
	"time"
)

// Statuses
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Categories
const (
	CategorySpecialEvents = "אירועים מיוחדים"
	CategoryEducation     = "חינוך וחברה"
	CategoryMussar        = "מוסר והשקפה"
	CategoryAvodah        = "עבודת ה׳"
	CategoryTanach        = "תנ״ך ואגדה"
	CategoryFridayKollel  = "כולל יום שישי"
)

var Categories = []string{
	CategoryFridayKollel,
	CategorySpecialEvents,
	CategoryEducation,
	CategoryMussar,
	CategoryAvodah,
	CategoryTanach,
}

func IsValidCategory(cat string) bool {
	for _, c := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// categoryRule maps title keywords to a category. Rules are evaluated in
// order; the first keyword hit wins.
type categoryRule struct {
	keywords []string
	category string
}

var categoryRules = []categoryRule{
	// special events by holiday keywords
	{[]string{"ראש השנה"}, CategorySpecialEvents},
	{[]string{"יום הכיפורים", "כיפורים"}, CategorySpecialEvents},
	{[]string{"הושענא רבה"}, CategorySpecialEvents},
	{[]string{"חנוכה"}, CategorySpecialEvents},
	{[]string{"פורים"}, CategorySpecialEvents},
	{[]string{"פסח"}, CategorySpecialEvents},
	{[]string{"ט\"ו בשבט", "טו בשבט"}, CategorySpecialEvents},
	{[]string{"עשרה בטבת"}, CategorySpecialEvents},

	// thematic categories
	{[]string{"התרבות", "חינוך"}, CategoryEducation},
	{[]string{"חובת האדם", "מוסר"}, CategoryMussar},
	{[]string{"עבודת התפילה", "תפילה"}, CategoryAvodah},
	{[]string{"רחל אימנו", "אבות", "אמהות"}, CategoryTanach},
}

// SuggestCategory infers a category from the lesson title; anything that does
// not match a rule belongs to the Friday kollel series.
func SuggestCategory(title string) string {
	lower := strings.ToLower(title)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryFridayKollel
}

type Notifications struct {
	Enabled       bool  `json:"enabled"`
	ReminderTimes []int `json:"reminderTimes"` // minutes before lesson
}

type Lesson struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Date carries the full local start datetime; Time duplicates its
	// HH:MM part for display, as in the persisted document.
	Date          time.Time     `json:"date"`
	Time          string        `json:"time"`
	Duration      int           `json:"duration"` // minutes
	Teacher       string        `json:"teacher"`
	Location      string        `json:"location"`
	Category      string        `json:"category"`
	Status        string        `json:"status"`
	Tags          []string      `json:"tags"`
	Notifications Notifications `json:"notifications"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// EndTime is the lesson start plus its duration.
func (l Lesson) EndTime() time.Time {
	return l.Date.Add(time.Duration(l.Duration) * time.Minute)
}

// Elapsed reports whether the lesson has already ended at `now`.
func (l Lesson) Elapsed(now time.Time) bool {
	return l.EndTime().Before(now)
}

// SameSlot reports whether `other` collides on calendar day and HH:MM.
// Collisions are surfaced to the caller, never rejected.
func (l Lesson) SameSlot(date time.Time, hhmm string) bool {
	y1, m1, d1 := l.Date.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2 && l.Time == hhmm
}

// NewLesson contains information needed to create a new Lesson.
type NewLesson struct {
	Title         string         `json:"title" validate:"required"`
	Description   string         `json:"description"`
	Date          time.Time      `json:"date" validate:"required"`
	Time          string         `json:"time" validate:"required,hhmm"`
	Duration      int            `json:"duration"`
	Teacher       string         `json:"teacher"`
	Location      string         `json:"location"`
	Category      string         `json:"category" validate:"omitempty,category"`
	Tags          []string       `json:"tags"`
	Notifications *Notifications `json:"notifications"`
}

// UpdateLesson contains fields to update an existing Lesson; zero-valued
// fields are left untouched.
type UpdateLesson struct {
	Title         string         `json:"title"`
	Description   *string        `json:"description"`
	Date          time.Time      `json:"date"`
	Time          string         `json:"time" validate:"omitempty,hhmm"`
	Duration      int            `json:"duration"`
	Teacher       *string        `json:"teacher"`
	Location      *string        `json:"location"`
	Category      string         `json:"category" validate:"omitempty,category"`
	Status        string         `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	Tags          []string       `json:"tags"`
	Notifications *Notifications `json:"notifications"`
}
