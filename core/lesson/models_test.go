package lesson

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSuggestCategory(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"הלכות חנוכה", CategorySpecialEvents},
		{"הכנה ליום הכיפורים", CategorySpecialEvents},
		{"חינוך ילדים בדורנו", CategoryEducation},
		{"שיעור מוסר שבועי", CategoryMussar},
		{"עבודת התפילה", CategoryAvodah},
		{"רחל אימנו", CategoryTanach},
		{"נושא ללא מילת מפתח", CategoryFridayKollel},
		{"", CategoryFridayKollel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SuggestCategory(tt.title), "title=%q", tt.title)
	}
}

func TestLesson_EndTimeAndElapsed(t *testing.T) {
	start := time.Date(2026, 1, 15, 20, 0, 0, 0, time.Local)
	l := Lesson{Date: start, Duration: 90}

	assert.Equal(t, start.Add(90*time.Minute), l.EndTime())
	assert.False(t, l.Elapsed(start.Add(89*time.Minute)))
	assert.True(t, l.Elapsed(start.Add(91*time.Minute)))
}

func TestLesson_SameSlot(t *testing.T) {
	day := time.Date(2026, 1, 15, 20, 0, 0, 0, time.Local)
	l := Lesson{Date: day, Time: "20:00"}

	assert.True(t, l.SameSlot(time.Date(2026, 1, 15, 8, 0, 0, 0, time.Local), "20:00"), "same day, any clock value on the probe")
	assert.False(t, l.SameSlot(day, "21:00"))
	assert.False(t, l.SameSlot(day.AddDate(0, 0, 1), "20:00"))
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, IsValidCategory(c))
	}
	assert.False(t, IsValidCategory("לא קיימת"))
}
