package lesson

import (
	"context"
	"fmt"
	"time"

	"github.com/mirpeset/mirpeset/core"
)

type (
	// Draft is a reviewed import candidate, ready to become a Lesson.
	Draft struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Category    string    `json:"category"`
		Date        time.Time `json:"date"`
		Time        string    `json:"time"`
		// Err carries a parse-stage annotation (e.g. a Hebrew date that
		// still needs manual conversion); such drafts fail the import
		// without aborting the batch.
		Err string `json:"error,omitempty"`
	}

	Conflict struct {
		Draft    Draft  `json:"draft"`
		Existing Lesson `json:"existing"`
		Replaced bool   `json:"replaced"`
	}

	ImportReport struct {
		Imported  int        `json:"imported"`
		Failed    int        `json:"failed"`
		Skipped   int        `json:"skipped"`
		Conflicts []Conflict `json:"conflicts,omitempty"`
	}
)

// Import merges reviewed drafts into the collection in one full-collection
// replace. Invalid drafts fail individually; the batch continues. A draft
// colliding with an existing lesson's day+time slot either replaces it
// (replaceConflicts) or is skipped, and the collision is reported either way.
func (svc *Service) Import(ctx context.Context, drafts []Draft, replaceConflicts bool) (ImportReport, core.SyncOutcome, error) {
	var report ImportReport

	lessons, err := svc.store.LoadLessons(ctx, true)
	if err != nil {
		return report, core.SyncOutcome{}, err
	}

	for _, d := range drafts {
		if d.Err != "" || d.Title == "" || d.Date.IsZero() || !hhmmRegex.MatchString(d.Time) {
			report.Failed++
			continue
		}

		nl := NewLesson{
			Title:       d.Title,
			Description: d.Description,
			Category:    d.Category,
			Date:        d.Date,
			Time:        d.Time,
		}

		if existing := FindConflict(lessons, d.Date, d.Time); existing != nil {
			conflict := Conflict{Draft: d, Existing: *existing}
			if replaceConflicts {
				kept := make([]Lesson, 0, len(lessons))
				for _, l := range lessons {
					if l.ID != existing.ID {
						kept = append(kept, l)
					}
				}
				lessons = append(kept, svc.newFromDraft(nl))
				conflict.Replaced = true
				report.Imported++
			} else {
				report.Skipped++
			}
			report.Conflicts = append(report.Conflicts, conflict)
			continue
		}

		lessons = append(lessons, svc.newFromDraft(nl))
		report.Imported++
	}

	if report.Imported == 0 {
		return report, core.SyncOutcome{}, nil
	}

	outcome, err := svc.store.ReplaceLessons(ctx, lessons, fmt.Sprintf("ייבוא %d שיעורים מקובץ", report.Imported))
	if err != nil {
		return report, outcome, err
	}
	return report, outcome, nil
}
