package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mirpeset/mirpeset/core/lesson"
)

// importSchedule parses a freeform schedule file and imports the extracted
// lessons in one batch. Candidates flagged at parse time (e.g. Hebrew dates
// needing manual conversion) are reported and skipped.
func (cli *commandLine) importSchedule(path string, replaceConflicts bool) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	candidates := cli.parser.ParseLessons(string(text))
	if len(candidates) == 0 {
		fmt.Println("no lesson candidates found")
		return nil
	}

	drafts := make([]lesson.Draft, 0, len(candidates))
	for _, c := range candidates {
		if c.Err != "" {
			fmt.Printf("flagged: %s (%s)\n", c.Title, c.Err)
		}
		drafts = append(drafts, c.Draft())
	}

	report, outcome, err := cli.lessonSvc.Import(context.Background(), drafts, replaceConflicts)
	if err != nil {
		return err
	}

	fmt.Printf("imported: %d, failed: %d, skipped: %d\n", report.Imported, report.Failed, report.Skipped)
	for _, c := range report.Conflicts {
		action := "skipped"
		if c.Replaced {
			action = "replaced"
		}
		fmt.Printf("conflict on %s %s: %q vs existing %q (%s)\n",
			c.Draft.Date.Format("02/01/2006"), c.Draft.Time, c.Draft.Title, c.Existing.Title, action)
	}
	if report.Imported > 0 {
		fmt.Printf("saved (remote synced: %v, version: %s)\n", outcome.RemoteSynced, outcome.Version)
	}
	return nil
}
