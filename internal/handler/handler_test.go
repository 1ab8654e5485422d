package handler

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"html"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/approaches/internal/assess"
	"github.com/pavelanni/approaches/internal/content"
	appI18n "github.com/pavelanni/approaches/internal/i18n"
	"github.com/pavelanni/approaches/internal/model"
	"github.com/pavelanni/approaches/internal/store"
)

const (
	testVisitor = "6f1c2a9e-3b4d-4e5f-8a7b-9c0d1e2f3a4b"
	testCSRF    = "test-csrf-token"
)

func TestMain(m *testing.M) {
	if err := appI18n.Init("en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testServer struct {
	t       *testing.T
	store   *store.Store
	reg     *Registry
	router  chi.Router
	lessons *content.Loader
	session string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	loader, err := content.Load(content.Embedded())
	if err != nil {
		t.Fatalf("content.Load: %v", err)
	}
	for _, l := range loader.Lessons() {
		if err := s.ImportLesson(l); err != nil {
			t.Fatalf("ImportLesson: %v", err)
		}
	}

	reg := NewRegistry(time.Hour, assess.InOrder)
	h, err := New(s, reg, model.AppConfig{ShuffleOptions: false, SessionTTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := chi.NewRouter()
	r.Use(appI18n.Middleware())
	r.Use(h.BasePathMiddleware)
	h.Routes(r)

	return &testServer{t: t, store: s, reg: reg, router: r, lessons: loader}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	ts.t.Helper()
	req.AddCookie(&http.Cookie{Name: visitorCookieName, Value: testVisitor})
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	if ts.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: ts.session})
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(target string) *httptest.ResponseRecorder {
	ts.t.Helper()
	return ts.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (ts *testServer) post(target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	ts.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", testCSRF)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return ts.do(req)
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectBody(t *testing.T, rec *httptest.ResponseRecorder, wants ...string) {
	t.Helper()
	body := rec.Body.String()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.get("/healthz")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "ok")
}

func TestIndexListsLessons(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.get("/")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Approaches in Psychology", "Psychodynamic Approach", "Lesson 8", `href="/lessons/3"`)
}

func TestVisitorCookieIssued(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == visitorCookieName {
			found = true
			if len(c.Value) != 36 {
				t.Errorf("expected a uuid, got %q", c.Value)
			}
		}
	}
	if !found {
		t.Error("expected a visitor cookie")
	}
}

func TestLessonRedirectsToFirstSlide(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.get("/lessons/2?mode=present")
	expectStatus(t, rec, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/lessons/2/slides/0?mode=present" {
		t.Errorf("unexpected redirect %q", loc)
	}
}

func TestSlideErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		target string
		want   int
	}{
		{"/lessons/abc/slides/0", http.StatusBadRequest},
		{"/lessons/99/slides/0", http.StatusNotFound},
		{"/lessons/1/slides/x", http.StatusBadRequest},
		{"/lessons/1/slides/-1", http.StatusNotFound},
		{"/lessons/1/slides/500", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			expectStatus(t, ts.get(tt.target), tt.want)
		})
	}
}

func TestSlideNavigation(t *testing.T) {
	ts := newTestServer(t)
	lesson, _ := ts.lessons.Lesson(1)
	last := len(lesson.Slides) - 1

	rec := ts.get("/lessons/1/slides/0")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `id="next" href="/lessons/1/slides/1"`, "Slide 1 of", "Back to lessons")
	if strings.Contains(rec.Body.String(), `id="prev"`) {
		t.Error("expected no previous link on the first slide")
	}

	rec = ts.get("/lessons/1/slides/" + strconv.Itoa(last) + "?mode=present")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `data-mode="present"`, `id="prev"`, "Exit presentation", `value="100"`)
	if strings.Contains(rec.Body.String(), `id="next"`) {
		t.Error("expected no next link on the last slide")
	}
	if strings.Contains(rec.Body.String(), "Back to lessons") {
		t.Error("expected no sidebar in presentation mode")
	}
}

func widgetSlide(t *testing.T, l model.Lesson, w model.WidgetKind) int {
	t.Helper()
	for i, s := range l.Slides {
		if s.Widget == w {
			return i
		}
	}
	t.Fatalf("lesson %d has no %s slide", l.ID, w)
	return 0
}

func TestQuizFlow(t *testing.T) {
	ts := newTestServer(t)
	lesson, _ := ts.lessons.Lesson(1)
	set, _ := lesson.Set(model.SetUnderstandingCheck)
	slide := widgetSlide(t, lesson, model.WidgetUnderstandingCheck)
	base := "/lessons/1/quiz/understanding_check/"
	form := func(kv ...string) url.Values {
		v := url.Values{"slide": {strconv.Itoa(slide)}}
		for i := 0; i+1 < len(kv); i += 2 {
			v.Set(kv[i], kv[i+1])
		}
		return v
	}

	rec := ts.get("/lessons/1/slides/" + strconv.Itoa(slide))
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `id="quiz-understanding_check"`, "Question 1 of 3", set.Questions[0].Prompt)

	rec = ts.post(base+"submit", form(), false)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.post(base+"submit", form(), true)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Select an option first.")

	for i, q := range set.Questions {
		rec = ts.post(base+"select", form("option", strconv.Itoa(q.CorrectIndex)), true)
		expectStatus(t, rec, http.StatusOK)
		expectBody(t, rec, `data-state="selected"`)

		rec = ts.post(base+"submit", form(), true)
		expectStatus(t, rec, http.StatusOK)
		expectBody(t, rec, "Correct!", `data-state="correct"`)

		rec = ts.post(base+"advance", form(), false)
		expectStatus(t, rec, http.StatusSeeOther)
		if loc := rec.Header().Get("Location"); loc != "/lessons/1/slides/"+strconv.Itoa(slide) {
			t.Errorf("question %d: unexpected redirect %q", i, loc)
		}
	}

	rec = ts.get("/lessons/1/slides/" + strconv.Itoa(slide))
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "You scored 3 out of 3 (100%)", "Excellent!", "Try again")

	rec = ts.post(base+"restart", form(), true)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Question 1 of 3", "Score: 0/3")
}

func TestQuizWrongAnswerShowsCorrectOption(t *testing.T) {
	ts := newTestServer(t)
	lesson, _ := ts.lessons.Lesson(2)
	set, _ := lesson.Set(model.SetUnderstandingCheck)
	q := set.Questions[0]
	wrong := (q.CorrectIndex + 1) % len(q.Options)
	base := "/lessons/2/quiz/understanding_check/"

	ts.post(base+"select", url.Values{"option": {strconv.Itoa(wrong)}}, true)
	rec := ts.post(base+"submit", nil, true)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Not quite.", `data-state="wrong"`, "The correct answer was "+assess.Label(q.CorrectIndex))
}

func TestQuizActionErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name   string
		target string
		form   url.Values
		want   int
	}{
		{"unknown set", "/lessons/1/quiz/final/submit", nil, http.StatusNotFound},
		{"batch set", "/lessons/1/quiz/do_now/submit", nil, http.StatusNotFound},
		{"missing set", "/lessons/1/quiz/walkthrough/submit", nil, http.StatusNotFound},
		{"unknown action", "/lessons/1/quiz/understanding_check/skip", nil, http.StatusNotFound},
		{"bad option", "/lessons/1/quiz/understanding_check/select", url.Values{"option": {"x"}}, http.StatusBadRequest},
		{"unknown lesson", "/lessons/42/quiz/understanding_check/select", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, ts.post(tt.target, tt.form, true), tt.want)
		})
	}
}

func TestCSRFRequired(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/lessons/1/quiz/understanding_check/restart", nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusForbidden)
}

func TestWalkthroughScenario(t *testing.T) {
	ts := newTestServer(t)
	lesson, _ := ts.lessons.Lesson(6)
	set, _ := lesson.Set(model.SetWalkthrough)
	slide := widgetSlide(t, lesson, model.WidgetWalkthrough)

	rec := ts.get("/lessons/6/slides/" + strconv.Itoa(slide))
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `class="scenario"`, "Identify the Defence Mechanism")
	if len(set.Questions) != 5 {
		t.Errorf("expected 5 walkthrough scenarios, got %d", len(set.Questions))
	}
}

func TestDoNowFlow(t *testing.T) {
	ts := newTestServer(t)
	lesson, _ := ts.lessons.Lesson(3)
	set, _ := lesson.Set(model.SetDoNow)
	base := "/lessons/3/donow/"

	rec := ts.post(base+"check", nil, true)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Answer every question before checking.", "0 of 5 answered")

	rec = ts.post(base+"check", nil, false)
	expectStatus(t, rec, http.StatusBadRequest)

	for i, q := range set.Questions {
		k := q.CorrectIndex
		if i == 0 {
			k = (k + 1) % len(q.Options)
		}
		rec = ts.post(base+"select", url.Values{"question": {strconv.Itoa(i)}, "option": {strconv.Itoa(k)}}, true)
		expectStatus(t, rec, http.StatusOK)
	}
	expectBody(t, rec, "5 of 5 answered", "Check answers")

	rec = ts.post(base+"check", nil, true)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Score: 4/5", `data-state="wrong"`, "Reset")

	rec = ts.post(base+"reset", nil, true)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "0 of 5 answered", "Reveal answers")
}

func TestDoNowRevealWithoutAnswers(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.post("/lessons/4/donow/reveal", nil, true)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Score: 0/5", `data-state="correct"`)
}

func TestDoNowPresentationMode(t *testing.T) {
	ts := newTestServer(t)
	lesson, _ := ts.lessons.Lesson(4)
	set, _ := lesson.Set(model.SetDoNow)
	slide := widgetSlide(t, lesson, model.WidgetDoNow)

	rec := ts.get("/lessons/4/slides/" + strconv.Itoa(slide) + "?mode=present")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `id="donow"`, html.EscapeString(set.Questions[0].Prompt), "Reveal answers")
	body := rec.Body.String()
	for _, unwanted := range []string{`name="option"`, "Check answers", "answered"} {
		if strings.Contains(body, unwanted) {
			t.Errorf("expected no %q in presentation mode", unwanted)
		}
	}

	rec = ts.post("/lessons/4/donow/reveal", url.Values{"mode": {"present"}, "slide": {strconv.Itoa(slide)}}, true)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Reset", `class="answer"`)
	for _, q := range set.Questions {
		expectBody(t, rec, html.EscapeString(q.CorrectAnswer()))
	}
	if strings.Contains(rec.Body.String(), `name="option"`) {
		t.Error("expected options hidden after reveal in presentation mode")
	}
	if strings.Contains(rec.Body.String(), "Reveal answers") {
		t.Error("expected only reset once revealed")
	}
}

func TestAttemptsAreIsolatedPerVisitor(t *testing.T) {
	ts := newTestServer(t)
	lesson, _ := ts.lessons.Lesson(1)
	set, _ := lesson.Set(model.SetUnderstandingCheck)
	q := set.Questions[0]

	ts.post("/lessons/1/quiz/understanding_check/select", url.Values{"option": {strconv.Itoa(q.CorrectIndex)}}, true)
	ts.post("/lessons/1/quiz/understanding_check/submit", nil, true)

	other := AttemptKey{Visitor: "someone-else", LessonID: 1, Version: 1, Set: model.SetUnderstandingCheck}
	err := ts.reg.Session(other, set.Questions, func(s *assess.Session) error {
		if s.Answered() || s.Score() != 0 {
			t.Errorf("expected a fresh attempt, got answered=%v score=%d", s.Answered(), s.Score())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if ts.reg.Len() != 2 {
		t.Errorf("expected 2 attempts, got %d", ts.reg.Len())
	}
}

func TestAdminDisabledWithoutPassword(t *testing.T) {
	ts := newTestServer(t)
	expectStatus(t, ts.get("/admin/lessons"), http.StatusNotFound)
	expectStatus(t, ts.get("/login"), http.StatusNotFound)
}

func loginPresenter(t *testing.T, ts *testServer, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if err := ts.store.SetPresenterPasswordHash(string(hash)); err != nil {
		t.Fatalf("SetPresenterPasswordHash: %v", err)
	}
	expectStatus(t, ts.get("/admin/lessons"), http.StatusSeeOther)

	rec := ts.post("/login", url.Values{"password": {"wrong"}}, false)
	expectStatus(t, rec, http.StatusUnauthorized)
	expectBody(t, rec, "Invalid password")

	rec = ts.post("/login", url.Values{"password": {password}}, false)
	expectStatus(t, rec, http.StatusSeeOther)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			ts.session = c.Value
		}
	}
	if ts.session == "" {
		t.Fatal("expected a session cookie")
	}
}

func uploadLesson(t *testing.T, ts *testServer, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("csrf_token", testCSRF); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile("lesson_file", name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/lessons", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return ts.do(req)
}

const uploadedLesson = `id: 9
slug: review
title: Review Lesson
theme:
  color: slate
slides:
- phase: Title
  title: Review Lesson
- phase: Check
  title: Quick check
  widget: understanding_check
understanding_check:
- id: r1
  prompt: Which approach focuses on free will?
  options: [Humanistic, Behaviourist]
  correct_index: 0
`

func TestAdminUpload(t *testing.T) {
	ts := newTestServer(t)
	loginPresenter(t, ts, "s3cret")

	rec := ts.get("/admin/lessons")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Upload a lesson file", "Origins of Psychology")

	rec = uploadLesson(t, ts, "09-review.yaml", []byte(uploadedLesson))
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Imported lesson 9: Review Lesson", "09-review.yaml")

	rec = uploadLesson(t, ts, "09-review.yaml", []byte(uploadedLesson))
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "09-review.yaml is unchanged")

	rec = uploadLesson(t, ts, "bad.yaml", []byte("id: 10\nslug: bad\n"))
	expectStatus(t, rec, http.StatusBadRequest)

	expectStatus(t, ts.get("/lessons/9/slides/1"), http.StatusOK)

	rec = ts.get("/admin/export")
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `"slug": "review"`, `"question_count": 1`)

	rec = ts.post("/logout", nil, false)
	expectStatus(t, rec, http.StatusSeeOther)
}

func TestAdminUploadTakenSlug(t *testing.T) {
	ts := newTestServer(t)
	loginPresenter(t, ts, "s3cret")

	clash := strings.Replace(uploadedLesson, "slug: review", "slug: origins", 1)
	for range 2 {
		rec := uploadLesson(t, ts, "09-review.yaml", []byte(clash))
		expectStatus(t, rec, http.StatusBadRequest)
		expectBody(t, rec, "Slug origins is already used by lesson 1", `data-state="warning"`)
	}
	expectStatus(t, ts.get("/lessons/9/slides/0"), http.StatusNotFound)
}

func TestAdminUploadKeepsStartupHashes(t *testing.T) {
	ts := newTestServer(t)
	loginPresenter(t, ts, "s3cret")

	sum := sha256.Sum256([]byte(uploadedLesson))
	hash := hex.EncodeToString(sum[:])
	if err := ts.store.SetImportedFileHash("09-review.yaml", hash); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}

	rec := uploadLesson(t, ts, "09-review.yaml", []byte(uploadedLesson))
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Imported lesson 9: Review Lesson", "upload:09-review.yaml")

	edited := strings.Replace(uploadedLesson, "title: Review Lesson", "title: Review Lesson, edited", 1)
	rec = uploadLesson(t, ts, "09-review.yaml", []byte(edited))
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Imported lesson 9: Review Lesson, edited")

	got, err := ts.store.GetImportedFileHash("09-review.yaml")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if got != hash {
		t.Errorf("expected startup hash %s untouched, got %s", hash, got)
	}
	editedSum := sha256.Sum256([]byte(edited))
	got, err = ts.store.GetImportedFileHash("upload:09-review.yaml")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if got != hex.EncodeToString(editedSum[:]) {
		t.Errorf("expected upload hash of the edited file, got %s", got)
	}
}

func TestReimportStartsFreshAttempts(t *testing.T) {
	ts := newTestServer(t)
	lesson, _ := ts.lessons.Lesson(1)
	set, _ := lesson.Set(model.SetUnderstandingCheck)
	slide := widgetSlide(t, lesson, model.WidgetUnderstandingCheck)
	base := "/lessons/1/quiz/understanding_check/"

	ts.post(base+"select", url.Values{"option": {strconv.Itoa(set.Questions[0].CorrectIndex)}}, true)
	ts.post(base+"submit", nil, true)
	rec := ts.post(base+"advance", nil, true)
	expectBody(t, rec, "Question 2 of")

	// A re-import without DropLesson still must not reuse the old attempt.
	if err := ts.store.ImportLesson(lesson); err != nil {
		t.Fatalf("ImportLesson: %v", err)
	}
	rec = ts.get("/lessons/1/slides/" + strconv.Itoa(slide))
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Question 1 of", "Score: 0/")
}

func TestRegistryKeysAttemptsByVersion(t *testing.T) {
	reg := NewRegistry(time.Hour, assess.InOrder)
	qs := []assess.Question{{ID: "q", Prompt: "?", Options: []string{"a", "b"}, CorrectIndex: 0}}
	answer := func(s *assess.Session) error {
		s.Select(0)
		_, err := s.Submit()
		return err
	}
	oldKey := AttemptKey{Visitor: "a", LessonID: 1, Version: 1, Set: model.SetWalkthrough}
	newKey := oldKey
	newKey.Version = 2

	if err := reg.Session(oldKey, qs, answer); err != nil {
		t.Fatal(err)
	}
	reg.DropLesson(1)
	// A request still holding version 1 lands after the drop.
	if err := reg.Session(oldKey, qs, answer); err != nil {
		t.Fatal(err)
	}
	err := reg.Session(newKey, qs, func(s *assess.Session) error {
		if s.Answered() || s.Score() != 0 {
			t.Errorf("expected a fresh attempt for the new version, got answered=%v score=%d", s.Answered(), s.Score())
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 2 {
		t.Errorf("expected 2 attempts, got %d", reg.Len())
	}
}

func TestRegistrySweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	reg := NewRegistry(30*time.Minute, assess.InOrder)
	reg.now = func() time.Time { return now }
	qs := []assess.Question{{ID: "q", Prompt: "?", Options: []string{"a", "b"}, CorrectIndex: 0}}
	noop := func(*assess.Session) error { return nil }

	if err := reg.Session(AttemptKey{Visitor: "a", LessonID: 1, Set: model.SetWalkthrough}, qs, noop); err != nil {
		t.Fatal(err)
	}
	now = now.Add(20 * time.Minute)
	if err := reg.Session(AttemptKey{Visitor: "b", LessonID: 1, Set: model.SetWalkthrough}, qs, noop); err != nil {
		t.Fatal(err)
	}
	now = now.Add(15 * time.Minute)

	if n := reg.Sweep(); n != 1 {
		t.Errorf("expected 1 swept attempt, got %d", n)
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 remaining attempt, got %d", reg.Len())
	}

	reg.DropLesson(1)
	if reg.Len() != 0 {
		t.Errorf("expected no attempts after DropLesson, got %d", reg.Len())
	}
}

func TestRegistryRejectsEmptySet(t *testing.T) {
	reg := NewRegistry(time.Minute, nil)
	err := reg.Session(AttemptKey{Visitor: "a"}, nil, func(*assess.Session) error { return nil })
	if err == nil {
		t.Fatal("expected an error for an empty question set")
	}
}
