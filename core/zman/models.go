package zman

import (
	"fmt"
	"time"
)

// Types normalizes the daily time-event vocabulary.
const (
	TypeCandleLighting = "candle_lighting"
	TypeSunset         = "sunset"
	TypeAlotHashachar  = "alot_hashachar"
	TypeNetz           = "netz"
	TypeTzeit          = "tzeit"
)

var Types = []string{TypeCandleLighting, TypeSunset, TypeAlotHashachar, TypeNetz, TypeTzeit}

// Zman is a non-lesson daily time event (candle-lighting, sunset, ...).
type Zman struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"` // the day this zman belongs to
	Time string    `json:"time"` // HH:MM
	// Label keeps the original source line.
	Label     string    `json:"label"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// DedupKey identifies a zman for bulk-insert deduplication: a day may carry
// one event per (type, time).
func (z Zman) DedupKey() string {
	return fmt.Sprintf("%s|%s|%s", z.Date.Format("2006-01-02"), z.Type, z.Time)
}

// NewZman contains information needed to create a new Zman.
type NewZman struct {
	Date  time.Time `json:"date" validate:"required"`
	Time  string    `json:"time" validate:"required"`
	Label string    `json:"label"`
	Type  string    `json:"type" validate:"required"`
}
