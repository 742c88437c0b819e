package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mirpeset/mirpeset/core/lesson"
	"github.com/mirpeset/mirpeset/core/zman"
)

// Draft turns a reviewed candidate into an importable lesson draft,
// rehydrating the DD/MM/YYYY + HH:MM strings into a local start datetime.
// A flagged candidate keeps its annotation and a zero date.
func (pl ParsedLesson) Draft() lesson.Draft {
	d := lesson.Draft{
		Title:       pl.Title,
		Description: pl.Description,
		Category:    pl.Category,
		Time:        pl.Time,
		Err:         pl.Err,
	}
	if d.Err != "" {
		return d
	}

	date, err := parseDMY(pl.Date)
	if err != nil {
		d.Err = errors.Wrap(err, "parsing candidate date").Error()
		return d
	}
	hour, minute, err := splitHHMM(pl.Time)
	if err != nil {
		d.Err = errors.Wrap(err, "parsing candidate time").Error()
		return d
	}
	d.Date = time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.Local)
	return d
}

// NewZman turns a zman candidate into an insertable record.
func (pz ParsedZman) NewZman() (zman.NewZman, error) {
	date, err := parseDMY(pz.Date)
	if err != nil {
		return zman.NewZman{}, errors.Wrap(err, "parsing zman date")
	}
	return zman.NewZman{
		Date:  date,
		Time:  pz.Time,
		Label: pz.Label,
		Type:  pz.Type,
	}, nil
}

func splitHHMM(hhmm string) (hour, minute int, err error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("malformed time %q", hhmm)
	}
	if hour, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, errors.Wrapf(err, "malformed hour in %q", hhmm)
	}
	if minute, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, errors.Wrapf(err, "malformed minute in %q", hhmm)
	}
	return hour, minute, nil
}
