package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Joseda-hg/kitchencheck/internal/auth"
	"github.com/Joseda-hg/kitchencheck/internal/checklist"
	"github.com/Joseda-hg/kitchencheck/internal/db"
	"github.com/Joseda-hg/kitchencheck/internal/model"
)

var testNow = time.Date(2026, time.October, 14, 11, 0, 0, 0, time.UTC)

type testEnv struct {
	handler http.Handler
	store   *db.Store
	tokens  *auth.Tokens
	manager auth.Session
	staff   auth.Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	store := db.NewStore(sqlDB, db.WithLocation(time.UTC))

	tokens, err := auth.NewTokens("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}

	env := &testEnv{store: store, tokens: tokens}
	env.manager = env.addUser(t, "manager@example.com", "Morgan Manager", model.RoleManager)
	env.staff = env.addUser(t, "staff@example.com", "Sam Staff", model.RoleStaff)

	service := checklist.NewService(store, store, checklist.WithClock(func() time.Time { return testNow }))
	env.handler = NewServer(service, store, tokens, WithLocation(time.UTC)).Handler()
	return env
}

func (e *testEnv) addUser(t *testing.T, email, name string, role model.Role) auth.Session {
	t.Helper()
	user, err := e.store.CreateUser(context.Background(), db.UserInput{Email: email, FullName: name, Role: role, Password: "password123"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return auth.SessionFor(user)
}

func (e *testEnv) seed(t *testing.T) []model.Task {
	t.Helper()
	tasks, err := e.store.SeedTasks(context.Background(), e.manager)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return tasks
}

func (e *testEnv) do(t *testing.T, session *auth.Session, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if session != nil {
		token, err := e.tokens.Issue(*session)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postForm(t *testing.T, session *auth.Session, target string, form url.Values) *httptest.ResponseRecorder {
	return e.do(t, session, http.MethodPost, target, []byte(form.Encode()), "application/x-www-form-urlencoded")
}

func (e *testEnv) postJSON(t *testing.T, session *auth.Session, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return e.do(t, session, method, target, body, "application/json")
}

func taskByTitle(t *testing.T, tasks []model.Task, title string) model.Task {
	t.Helper()
	for _, task := range tasks {
		if task.Title == title {
			return task
		}
	}
	t.Fatalf("task %q not found", title)
	return model.Task{}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm(t, nil, "/login", url.Values{"email": {"STAFF@example.com"}, "password": {"password123"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("expected an http-only session cookie, got %+v", cookie)
	}
	session, err := env.tokens.Verify(cookie.Value)
	if err != nil {
		t.Fatalf("verify cookie: %v", err)
	}
	if session.UserID != env.staff.UserID {
		t.Fatalf("expected staff session, got %+v", session)
	}

	rec = env.postForm(t, nil, "/login", url.Values{"email": {"staff@example.com"}, "password": {"nope-nope"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), auth.ErrInvalidCredentials.Error()) {
		t.Fatalf("expected credentials error in body")
	}
}

func TestPagesRequireLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, nil, http.MethodGet, "/", nil, "")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	rec = env.do(t, nil, http.MethodGet, "/api/board", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 from api, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "garbage"})
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected a bad cookie to be treated as logged out, got %d", rec.Code)
	}
}

func TestBoardPageRendersToday(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	rec := env.do(t, &env.staff, http.MethodGet, "/", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Wednesday 14 October", "Overdue", "Fridge temperature check", "acceptable 0 to 5", "Sam Staff"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in board page", want)
		}
	}
}

func TestSubmitFlaggedValueNeedsComment(t *testing.T) {
	env := newTestEnv(t)
	fridge := taskByTitle(t, env.seed(t), "Fridge temperature check")
	target := "/tasks/" + fridge.ID + "/records"

	rec := env.postForm(t, &env.staff, target, url.Values{"value": {"7"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "outside the acceptable range (0 to 5)") {
		t.Fatalf("expected range message in page")
	}

	rec = env.postForm(t, &env.staff, target, url.Values{"value": {"7"}, "comment": {"Door was left open"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, &env.staff, http.MethodGet, "/api/board", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var board struct {
		Summary checklist.Summary `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if board.Summary.Completed != 1 || board.Summary.Flagged != 1 {
		t.Fatalf("expected one flagged completion, got %+v", board.Summary)
	}
}

func TestAPISubmitAndCheck(t *testing.T) {
	env := newTestEnv(t)
	delivery := taskByTitle(t, env.seed(t), "Delivery inspection")

	no := false
	rec := env.postJSON(t, &env.staff, http.MethodPost, "/api/tasks/"+delivery.ID+"/check", map[string]any{"boolean": no})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode check: %v", err)
	}
	if result["should_flag"] != true || result["is_valid"] != true {
		t.Fatalf("expected valid flagged result, got %v", result)
	}

	rec = env.postJSON(t, &env.staff, http.MethodPost, "/api/tasks/"+delivery.ID+"/records", map[string]any{"boolean": no})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without comment, got %d", rec.Code)
	}

	rec = env.postJSON(t, &env.staff, http.MethodPost, "/api/tasks/"+delivery.ID+"/records", map[string]any{"boolean": no, "comment": "Chilled box was warm"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var record model.TaskRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if !record.Flagged || record.FlagComment == nil || *record.FlagComment != "Chilled box was warm" {
		t.Fatalf("unexpected record %+v", record)
	}

	rec = env.postJSON(t, &env.staff, http.MethodPost, "/api/tasks/missing/records", map[string]any{"boolean": true})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown task, got %d", rec.Code)
	}
}

func TestManagerRoutesForbiddenForStaff(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/manage/tasks", "/manage/log", "/manage/log/export.xlsx"} {
		rec := env.do(t, &env.staff, http.MethodGet, target, nil, "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", target, rec.Code)
		}
	}
	rec := env.do(t, &env.staff, http.MethodGet, "/api/records", nil, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 from records api, got %d", rec.Code)
	}
	rec = env.postJSON(t, &env.staff, http.MethodPost, "/api/tasks", db.DefaultTasks()[0])
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 creating a task, got %d", rec.Code)
	}
}

func TestManageTasksFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm(t, &env.manager, "/manage/seed", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/manage/tasks?seeded=8" {
		t.Fatalf("expected redirect after seeding 8, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	form := url.Values{
		"title":         {"Probe calibration"},
		"input_type":    {"number"},
		"schedule_type": {"weekly"},
		"days":          {"1", "4"},
		"time":          {"08:30"},
		"range_min":     {"-1"},
		"range_max":     {"1"},
		"assigned_role": {"manager"},
	}
	rec = env.postForm(t, &env.manager, "/manage/tasks", form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}

	form.Set("time", "8 o'clock")
	rec = env.postForm(t, &env.manager, "/manage/tasks", form)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "time must be HH:MM") {
		t.Fatalf("expected validation error, got %d", rec.Code)
	}

	rec = env.do(t, &env.manager, http.MethodGet, "/manage/tasks", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Mon, Thu at 08:30") {
		t.Fatalf("expected weekly schedule to be listed")
	}

	tasks, err := env.store.ListTasks(context.Background(), env.manager, true)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	probe := taskByTitle(t, tasks, "Probe calibration")

	rec = env.do(t, &env.manager, http.MethodGet, "/manage/tasks/"+probe.ID, nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "created: title=") {
		t.Fatalf("expected edit page with history, got %d", rec.Code)
	}

	rec = env.postForm(t, &env.manager, "/manage/tasks/"+probe.ID+"/deactivate", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	rec = env.do(t, &env.staff, http.MethodGet, "/api/tasks", nil, "")
	if strings.Contains(rec.Body.String(), "Probe calibration") {
		t.Fatalf("expected manager-only inactive task to be hidden from staff")
	}
}

func TestAPITaskCRUD(t *testing.T) {
	env := newTestEnv(t)

	input := db.DefaultTasks()[0]
	rec := env.postJSON(t, &env.manager, http.MethodPost, "/api/tasks", input)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID       string          `json:"id"`
		Schedule json.RawMessage `json:"schedule"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if created.ID == "" || string(created.Schedule) != `{"type":"daily","time":"09:00"}` {
		t.Fatalf("unexpected task %s", rec.Body.String())
	}

	input.Title = ""
	rec = env.postJSON(t, &env.manager, http.MethodPut, "/api/tasks/"+created.ID, input)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = env.do(t, &env.manager, http.MethodDelete, "/api/tasks/"+created.ID, nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"is_active":false`) {
		t.Fatalf("expected deactivated task, got %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, &env.manager, http.MethodGet, "/api/tasks/"+created.ID, nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"event_type":"deactivated"`) {
		t.Fatalf("expected task with history, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestLogFiltersAndExports(t *testing.T) {
	env := newTestEnv(t)
	fridge := taskByTitle(t, env.seed(t), "Fridge temperature check")

	rec := env.postJSON(t, &env.staff, http.MethodPost, "/api/tasks/"+fridge.ID+"/records", map[string]any{"number": 3.5})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = env.do(t, &env.manager, http.MethodGet, "/api/records?start=2026-10-14&end=2026-10-14", nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Fatalf("expected one record today, got %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, &env.manager, http.MethodGet, "/api/records?flagged=1", nil, "")
	if !strings.Contains(rec.Body.String(), `"count":0`) {
		t.Fatalf("expected no flagged records, got %s", rec.Body.String())
	}
	rec = env.do(t, &env.manager, http.MethodGet, "/api/records?start=yesterday", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}

	rec = env.do(t, &env.manager, http.MethodGet, "/manage/log?task_id="+fridge.ID, nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "3.5") {
		t.Fatalf("expected log page with the record, got %d", rec.Code)
	}

	rec = env.do(t, &env.manager, http.MethodGet, "/manage/log/export.xlsx", nil, "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("expected xlsx download, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "compliance-log-2026-10-14.xlsx") {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}

	rec = env.do(t, &env.manager, http.MethodGet, "/manage/log/export.pdf?flagged=1", nil, "")
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected pdf download, got %d", rec.Code)
	}
}
