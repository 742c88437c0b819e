package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindWorkDir(t *testing.T) {
	wd := FindWorkDir()
	_, err := os.Stat(filepath.Join(wd, "go.mod"))
	assert.NoError(t, err, "work dir is the module root")
}

type reminderTestData struct {
	Title       string
	Description string
	When        string
	Minutes     int
	StartsNow   bool
}

// Render must locate the template assets regardless of the process working
// directory (go test runs from the package dir, not the module root).
func TestEmailMessageRenderTemplates(t *testing.T) {
	Conf = &Config{
		WorkDir:         FindWorkDir(),
		TestMode:        true,
		FrontendBaseURL: "http://localhost:5173",
	}

	msg := &EmailMessage{
		To:           []mail.Address{{Address: "admin@mirpeset.com"}},
		Subject:      "תזכורת: הלכות שבת",
		TemplateName: "lesson-reminder",
		TemplateData: reminderTestData{
			Title:   "הלכות שבת",
			When:    "01/02/2026 20:00",
			Minutes: 30,
		},
	}
	require.NoError(t, msg.Render())

	assert.Contains(t, msg.TextContent, "הלכות שבת")
	assert.Contains(t, msg.TextContent, "30 דקות")
	assert.Contains(t, msg.HTMLContent, "הלכות שבת")
	assert.Contains(t, msg.HTMLContent, Conf.FrontendBaseURL)
	assert.True(t, msg.HasContent())
}
