package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/lesson"
)

const (
	// HebrewDatePlaceholder marks a candidate whose date still needs manual
	// conversion from a Hebrew-script date.
	HebrewDatePlaceholder = "תאריך עברי - דורש המרה"
	hebrewDateErr         = "תאריך עברי דורש המרה ידנית"

	defaultTime = "20:00"
)

type (
	// ParsedLesson is a lesson candidate extracted from one source line.
	// Date stays a DD/MM/YYYY string until the caller confirms the import.
	ParsedLesson struct {
		Title       string `json:"title"`
		Date        string `json:"date"`
		Time        string `json:"time"`
		Category    string `json:"category"`
		Description string `json:"description,omitempty"`
		Err         string `json:"error,omitempty"`
	}

	// ParsedZman is a time-marker candidate extracted from one source line.
	ParsedZman struct {
		Label string `json:"label"`
		Date  string `json:"date"`
		Time  string `json:"time"`
		Type  string `json:"type"`
	}

	// lessonPattern is one recognized line shape. Patterns are tried in
	// order; the first match wins. A headingOnly pattern sets the carried
	// general heading instead of emitting a candidate.
	lessonPattern struct {
		re          *regexp.Regexp
		headingOnly bool
	}

	zmanPattern struct {
		re       *regexp.Regexp
		zmanType string
	}

	Parser struct {
		clock core.Clock
	}
)

var (
	// field separator: hyphen, en dash or em dash
	dashRegex = regexp.MustCompile(`\s*[-–—]\s*`)

	lessonPatterns = []lessonPattern{
		// 4-digit-year dates
		{re: regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})\s*[-–—]\s*(\d{1,2}:\d{2})\s*[-–—]\s*(.+?)$`)},
		{re: regexp.MustCompile(`(\d{1,2}\.\d{1,2}\.\d{4})\s*[-–—]\s*(\d{1,2}:\d{2})\s*[-–—]\s*(.+?)$`)},
		{re: regexp.MustCompile(`(\d{1,2}\s\d{1,2}\s\d{4})\s*[-–—]\s*(\d{1,2}:\d{2})\s*[-–—]\s*(.+?)$`)},
		// 2-digit-year dates
		{re: regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{2})\s*[-–—]\s*(\d{1,2}:\d{2})\s*[-–—]\s*(.+?)$`)},
		{re: regexp.MustCompile(`(\d{1,2}\.\d{1,2}\.\d{2})\s*[-–—]\s*(\d{1,2}:\d{2})\s*[-–—]\s*(.+?)$`)},
		{re: regexp.MustCompile(`(\d{1,2}\s\d{1,2}\s\d{2})\s*[-–—]\s*(\d{1,2}:\d{2})\s*[-–—]\s*(.+?)$`)},
		// date without a time: a general heading, not a lesson
		{re: regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})\s*[-–—]\s*(.+?)$`), headingOnly: true},
	}

	// a Hebrew-script date followed by time and title; emitted flagged for
	// manual conversion rather than dropped
	hebrewDateRegex = regexp.MustCompile(`([\x{0590}-\x{05FF}\s\d"']+)\s*[-–—]\s*(\d{2}:\d{2})\s*[-–—]\s*([^-–—]+?)(?:\s*[-–—]\s*(.+?))?$`)

	// each zman keyword must find its HH:MM within a bounded window after
	// the date token
	zmanPatterns = []zmanPattern{
		{regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4}).{0,40}?הדלקת נרות.*?(\d{1,2}:\d{2})`), "candle_lighting"},
		{regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4}).{0,40}?שקיעה.*?(\d{1,2}:\d{2})`), "sunset"},
		{regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4}).{0,40}?עלות השחר.*?(\d{1,2}:\d{2})`), "alot_hashachar"},
		{regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4}).{0,40}?נץ.*?(\d{1,2}:\d{2})`), "netz"},
		{regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4}).{0,40}?צאת.*?(\d{1,2}:\d{2})`), "tzeit"},
	}

	commentRegex   = regexp.MustCompile(`^#`)
	sectionRegex   = regexp.MustCompile(`^\[.+\]$`)
	separatorRegex = regexp.MustCompile(`^=+`)
)

func NewParser(clock core.Clock) *Parser {
	return &Parser{clock: clock}
}

// contentLines drops blank lines and template scaffolding (comments,
// [section] headers, ==== rulers); everything else may be schedule content.
func contentLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || commentRegex.MatchString(line) || sectionRegex.MatchString(line) || separatorRegex.MatchString(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// ParseLessons extracts lesson candidates from free text, one line at a time.
// Unmatched lines are ignored; free text is expected to contain plenty of
// non-schedule lines.
func (p *Parser) ParseLessons(text string) []ParsedLesson {
	var candidates []ParsedLesson
	heading := ""

	for _, line := range contentLines(text) {
		matched := false
		for _, pat := range lessonPatterns {
			m := pat.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			matched = true
			if pat.headingOnly {
				heading = strings.TrimSpace(m[2])
				break
			}
			candidates = append(candidates, p.buildCandidate(m[1], m[2], m[3], heading))
			break
		}

		if !matched {
			if c, ok := hebrewDateCandidate(line); ok {
				candidates = append(candidates, c)
			}
		}
	}
	return candidates
}

func (p *Parser) buildCandidate(dateStr, timeStr, title, heading string) ParsedLesson {
	presenter, subject := SplitTitle(title)

	date := p.normalizeDate(dateStr)
	hhmm := normalizeTime(timeStr)

	// a lesson between midnight and 04:00 belongs to the previous day's slot
	finalDate := date
	if hour := timeHour(hhmm); hour >= 0 && hour < 4 {
		if d, err := parseDMY(date); err == nil {
			finalDate = formatDMY(d.AddDate(0, 0, -1))
		}
	}

	// Thursday slots belong to the Friday kollel series regardless of the
	// document's stated heading
	finalHeading := heading
	if d, err := parseDMY(finalDate); err == nil {
		if d.Weekday() == time.Thursday && heading != "" {
			finalHeading = lesson.CategoryFridayKollel
		}
	}

	var description string
	switch {
	case presenter != "":
		description = "רב: " + presenter
	case finalHeading != "":
		description = "כותרת: " + finalHeading
	}

	return ParsedLesson{
		Title:       subject,
		Date:        finalDate,
		Time:        hhmm,
		Category:    lesson.SuggestCategory(subject),
		Description: description,
	}
}

// SplitTitle separates "presenter - subject" on the first dash-type
// separator; without one the whole segment is the subject.
func SplitTitle(title string) (presenter, subject string) {
	title = strings.TrimSpace(title)
	if dashRegex.MatchString(title) {
		parts := dashRegex.Split(title, -1)
		if len(parts) >= 2 {
			presenter = strings.TrimSpace(parts[0])
			subject = strings.TrimSpace(strings.Join(parts[1:], " - "))
			return presenter, subject
		}
	}
	if title != "" {
		return "", title
	}
	return "", lesson.CategoryFridayKollel
}

// normalizeDate unifies separators to "/", converts two-digit years and
// zero-pads day and month.
func (p *Parser) normalizeDate(dateStr string) string {
	date := strings.ReplaceAll(dateStr, ".", "/")
	date = strings.ReplaceAll(date, " ", "/")

	parts := strings.Split(date, "/")
	if len(parts) != 3 {
		return date
	}
	day, month, year := parts[0], parts[1], parts[2]
	if len(year) == 2 {
		if yy, err := strconv.Atoi(year); err == nil {
			year = strconv.Itoa(p.expandTwoDigitYear(yy))
		}
	}
	return pad2(day) + "/" + pad2(month) + "/" + year
}

// expandTwoDigitYear disambiguates toward the nearer century boundary:
// yy <= 50 lands in the current century, anything above in the previous one.
func (p *Parser) expandTwoDigitYear(yy int) int {
	currentCentury := p.clock.Now().Year() / 100 * 100
	if yy <= 50 {
		return currentCentury + yy
	}
	return currentCentury - 100 + yy
}

// normalizeTime zero-pads the hour; a token without ":" falls back to the
// default evening slot.
func normalizeTime(timeStr string) string {
	if !strings.Contains(timeStr, ":") {
		return defaultTime
	}
	parts := strings.SplitN(timeStr, ":", 2)
	return pad2(parts[0]) + ":" + parts[1]
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

func timeHour(hhmm string) int {
	h, err := strconv.Atoi(strings.SplitN(hhmm, ":", 2)[0])
	if err != nil {
		return -1
	}
	return h
}

func hebrewDateCandidate(line string) (ParsedLesson, bool) {
	m := hebrewDateRegex.FindStringSubmatch(line)
	if m == nil {
		return ParsedLesson{}, false
	}
	title := strings.TrimSpace(m[3])
	var description string
	if loc := strings.TrimSpace(m[4]); loc != "" {
		description = "מקום: " + loc
	}
	return ParsedLesson{
		Title:       title,
		Date:        HebrewDatePlaceholder,
		Time:        m[2],
		Category:    lesson.SuggestCategory(title),
		Description: description,
		Err:         hebrewDateErr,
	}, true
}

// ParseZmanim extracts time-marker candidates; the first matching keyword
// pattern per line wins.
func (p *Parser) ParseZmanim(text string) []ParsedZman {
	var out []ParsedZman
	for _, line := range contentLines(text) {
		for _, pat := range zmanPatterns {
			m := pat.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			out = append(out, ParsedZman{
				Label: line,
				Date:  zeroPadDate(m[1]),
				Time:  m[2],
				Type:  pat.zmanType,
			})
			break
		}
	}
	return out
}

func zeroPadDate(date string) string {
	parts := strings.Split(date, "/")
	if len(parts) != 3 {
		return date
	}
	return pad2(parts[0]) + "/" + pad2(parts[1]) + "/" + parts[2]
}

// parseDMY parses a DD/MM/YYYY string as a local calendar date.
func parseDMY(date string) (time.Time, error) {
	return time.ParseInLocation("02/01/2006", date, time.Local)
}

func formatDMY(t time.Time) string {
	return t.Format("02/01/2006")
}
