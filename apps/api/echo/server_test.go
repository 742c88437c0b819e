package echoapi

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/lesson"
	"github.com/mirpeset/mirpeset/core/recording"
	"github.com/mirpeset/mirpeset/core/schedule"
	"github.com/mirpeset/mirpeset/core/zman"
	"github.com/mirpeset/mirpeset/storage/inmem"
)

const (
	testAdminEmail    = "admin@mirpeset.com"
	testAdminPassword = "s3cr3t!pass"
)

func TestMain(m *testing.M) {
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		log.Fatal(err)
	}

	conf := &core.Config{
		Env:             "TEST",
		AppName:         "Mirpeset",
		WorkDir:         core.FindWorkDir(),
		TestMode:        true,
		SecretKey:       "test-secret-key",
		FrontendBaseURL: "http://localhost:5173",
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Admin.Emails = []string{testAdminEmail}
	conf.Admin.PasswordHash = string(hash)
	core.Conf = conf

	os.Exit(m.Run())
}

type testEnv struct {
	server      Server
	clock       *core.FixedClock
	lessonStore *inmem.LessonStore
}

func newTestEnv(seed ...lesson.Lesson) *testEnv {
	clock := &core.FixedClock{Time: time.Date(2026, 1, 15, 12, 0, 0, 0, time.Local)}
	logger := core.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	lessonStore := inmem.NewLessonStore(seed...)

	srv := NewServer(&Options{
		Address:        ":0",
		DisableReqLogs: true,
		LessonSvc:      lesson.NewService(lessonStore, clock, logger, []int{30, 10}),
		RecordingSvc:   recording.NewService(inmem.NewRecordingStore(), clock),
		ZmanSvc:        zman.NewService(inmem.NewZmanStore(), clock),
		Parser:         schedule.NewParser(clock),
		Logger:         logger,
	})
	return &testEnv{server: srv, clock: clock, lessonStore: lessonStore}
}

func (env *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(buf))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T) string {
	t.Helper()
	rec := env.request(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": testAdminEmail, "password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func TestLogin(t *testing.T) {
	env := newTestEnv()

	t.Run("ok", func(t *testing.T) {
		env.login(t)
	})
	t.Run("wrong password", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
			"email": testAdminEmail, "password": "nope",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("unknown email", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
			"email": "someone@else.com", "password": testAdminPassword,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("missing fields", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/v1/auth/login", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var fldErrs map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
		assert.Contains(t, fldErrs, "email")
		assert.Contains(t, fldErrs, "password")
	})
}

func TestLessonAPI_publicReads(t *testing.T) {
	env := newTestEnv(lesson.Lesson{
		ID: "a", Title: "שיעור", Date: time.Date(2026, 2, 1, 20, 0, 0, 0, time.Local),
		Time: "20:00", Duration: 90, Status: lesson.StatusScheduled,
	})

	rec := env.request(t, http.MethodGet, "/v1/lessons", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lessons []lesson.Lesson
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lessons))
	assert.Len(t, lessons, 1)

	rec = env.request(t, http.MethodGet, "/v1/lessons/a", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/v1/lessons/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.request(t, http.MethodGet, "/v1/lessons/upcoming", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLessonAPI_adminGuard(t *testing.T) {
	env := newTestEnv()

	body := map[string]interface{}{
		"title": "שיעור חדש",
		"date":  time.Date(2026, 2, 1, 20, 0, 0, 0, time.Local).Format(time.RFC3339),
		"time":  "20:00",
	}

	rec := env.request(t, http.MethodPost, "/v1/lessons", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodPost, "/v1/lessons", env.login(t), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp syncedLesson
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Lesson.ID)
	assert.True(t, resp.Sync.RemoteSynced)
}

func TestLessonAPI_validationErrors(t *testing.T) {
	env := newTestEnv()
	token := env.login(t)

	rec := env.request(t, http.MethodPost, "/v1/lessons", token, map[string]interface{}{
		"date": time.Now().Format(time.RFC3339), "time": "20:00",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var fldErrs map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
	assert.Contains(t, fldErrs, "title")
}

func TestLessonAPI_updateAndDelete(t *testing.T) {
	env := newTestEnv(lesson.Lesson{
		ID: "a", Title: "שיעור", Date: time.Date(2026, 2, 1, 20, 0, 0, 0, time.Local),
		Time: "20:00", Duration: 90, Status: lesson.StatusScheduled,
	})
	token := env.login(t)

	rec := env.request(t, http.MethodPut, "/v1/lessons/a", token, map[string]string{"title": "מעודכן"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.request(t, http.MethodDelete, "/v1/lessons/a", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodDelete, "/v1/lessons/a", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLessonAPI_deleteAll(t *testing.T) {
	env := newTestEnv(lesson.Lesson{
		ID: "a", Title: "שיעור", Date: time.Date(2026, 2, 1, 20, 0, 0, 0, time.Local),
		Time: "20:00", Duration: 90, Status: lesson.StatusScheduled,
	})
	token := env.login(t)

	rec := env.request(t, http.MethodDelete, "/v1/lessons", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "מחיקת כל השיעורים", env.lessonStore.Messages[len(env.lessonStore.Messages)-1])

	rec = env.request(t, http.MethodGet, "/v1/lessons", "", nil)
	var lessons []lesson.Lesson
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lessons))
	assert.Empty(t, lessons)
}

func TestImportAPI_parseAndConfirm(t *testing.T) {
	env := newTestEnv()
	token := env.login(t)

	text := "06/01/2026 - 20:00 - הרב לוי - אמונה וביטחון\nכ\"ה בכסלו - 19:30 - שיעור חנוכה"
	rec := env.request(t, http.MethodPost, "/v1/import/parse", token, map[string]string{"text": text})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var parsed struct {
		Candidates []schedule.ParsedLesson `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	require.Len(t, parsed.Candidates, 2)
	assert.Empty(t, parsed.Candidates[0].Err)
	assert.NotEmpty(t, parsed.Candidates[1].Err, "Hebrew date flagged for manual conversion")

	rec = env.request(t, http.MethodPost, "/v1/import/confirm", token, map[string]interface{}{
		"candidates": parsed.Candidates,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp importConfirmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Report.Imported)
	assert.Equal(t, 1, resp.Report.Failed)

	rec = env.request(t, http.MethodGet, "/v1/lessons", "", nil)
	var lessons []lesson.Lesson
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lessons))
	require.Len(t, lessons, 1)
	assert.Equal(t, "אמונה וביטחון", lessons[0].Title)
}

func TestZmanAPI_bulk(t *testing.T) {
	env := newTestEnv()
	token := env.login(t)

	candidates := []schedule.ParsedZman{
		{Label: "הדלקת נרות", Date: "16/01/2026", Time: "16:30", Type: zman.TypeCandleLighting},
		{Label: "הדלקת נרות", Date: "16/01/2026", Time: "16:30", Type: zman.TypeCandleLighting},
		{Label: "פגום", Date: "לא תאריך", Time: "16:30", Type: zman.TypeCandleLighting},
	}
	rec := env.request(t, http.MethodPost, "/v1/zmanim/bulk", token, map[string]interface{}{
		"candidates": candidates,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp zmanBulkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Inserted)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, 1, resp.Failed)

	rec = env.request(t, http.MethodGet, "/v1/zmanim", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var zmanim []zman.Zman
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &zmanim))
	assert.Len(t, zmanim, 1)
}

func TestLessonAPI_export(t *testing.T) {
	env := newTestEnv(lesson.Lesson{
		ID: "a", Title: "שיעור", Date: time.Date(2026, 2, 1, 20, 0, 0, 0, time.Local),
		Time: "20:00", Duration: 90, Status: lesson.StatusScheduled,
	})
	token := env.login(t)

	rec := env.request(t, http.MethodGet, "/v1/lessons/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "lessons-export-")

	var lessons []lesson.Lesson
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lessons))
	assert.Len(t, lessons, 1)
}

func TestHome(t *testing.T) {
	env := newTestEnv()
	rec := env.request(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "המרפסת")
}
