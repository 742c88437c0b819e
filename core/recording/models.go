package recording

import "regexp"

// RecordingLink associates a playable/downloadable URL with a lesson.
// LessonID is not enforced; a dangling reference is tolerated.
type RecordingLink struct {
	ID          string `json:"id"`
	LessonID    string `json:"lessonId"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	UploadDate  string `json:"uploadDate"` // YYYY-MM-DD
	FileSize    string `json:"fileSize,omitempty"`
}

// NewRecording contains information needed to create a new RecordingLink.
type NewRecording struct {
	LessonID    string `json:"lessonId"`
	Title       string `json:"title" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Description string `json:"description"`
	FileSize    string `json:"fileSize"`
}

// UpdateRecording contains fields to update; zero-valued fields are left
// untouched.
type UpdateRecording struct {
	LessonID    *string `json:"lessonId"`
	Title       string  `json:"title"`
	URL         string  `json:"url" validate:"omitempty,url"`
	Description *string `json:"description"`
	FileSize    *string `json:"fileSize"`
}

var driveFileRegex = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)

// FormatDriveURL converts a Google Drive view URL to its preview form for
// in-place audio playback; other URLs pass through unchanged.
func FormatDriveURL(url string) string {
	if driveFileRegex.MatchString(url) {
		if m := driveFileRegex.FindStringSubmatch(url); m != nil {
			return "https://drive.google.com/file/d/" + m[1] + "/preview"
		}
	}
	return url
}
