package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos"
	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos/testutil"
	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	httpH "github.com/yungbote/belajar-alkitab-backend/internal/http/handlers"
	httpMW "github.com/yungbote/belajar-alkitab-backend/internal/http/middleware"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime/bus"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

type testServer struct {
	t       *testing.T
	engine  *gin.Engine
	auth    services.AuthService
	teacher string
	learner string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := httpH.RegisterValidators(); err != nil {
		t.Fatalf("RegisterValidators: %v", err)
	}
	db := testutil.DB(t)
	log := testutil.Logger(t)

	moduleRepo := repos.NewModuleRepo(db, log)
	sessionRepo := repos.NewSessionRepo(db, log)
	timestampRepo := repos.NewTimestampRepo(db, log)
	noteRepo := repos.NewNoteRepo(db, log)
	progressRepo := repos.NewProgressRepo(db, log)

	b := bus.NewMemoryBus(log)
	t.Cleanup(func() { _ = b.Close() })
	hub := realtime.NewSSEHub(log)
	cache := services.NewProgressCache()
	notifier := services.NewChangeNotifier(log, b)
	notifier.Subscribe(cache.Apply)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := notifier.Start(ctx, hub); err != nil {
		t.Fatalf("notifier.Start: %v", err)
	}

	auth := services.NewAuthService(log, services.AuthConfig{SecretKey: "test-secret"})
	profiles := services.NewProfileService(db, log, repos.NewProfileRepo(db, log), time.Minute)
	guard := services.NewAccessGuard(log, profiles)
	modules := services.NewModuleService(db, log, guard, moduleRepo, sessionRepo, timestampRepo, noteRepo, progressRepo, cache, notifier)
	sessions := services.NewSessionService(db, log, guard, moduleRepo, sessionRepo, timestampRepo, noteRepo, progressRepo, cache, notifier)
	timestamps := services.NewTimestampService(db, log, guard, sessionRepo, timestampRepo, noteRepo, notifier)
	notes := services.NewNoteService(db, log, guard, sessionRepo, timestampRepo, noteRepo, notifier)
	progress := services.NewProgressService(db, log, moduleRepo, sessionRepo, progressRepo, cache, notifier)

	ts := &testServer{t: t, auth: auth}
	ts.engine = NewRouter(RouterConfig{
		Log:              log,
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, auth, guard),
		RequestTimeout:   5 * time.Second,
		HealthHandler:    httpH.NewHealthHandler(db),
		MeHandler:        httpH.NewMeHandler(log, profiles, guard),
		ModuleHandler:    httpH.NewModuleHandler(modules, sessions, progress),
		SessionHandler:   httpH.NewSessionHandler(sessions),
		TimestampHandler: httpH.NewTimestampHandler(timestamps),
		NoteHandler:      httpH.NewNoteHandler(notes),
		ProgressHandler:  httpH.NewProgressHandler(progress),
		ProfileHandler:   httpH.NewProfileHandler(profiles),
		RealtimeHandler:  httpH.NewRealtimeHandler(log, hub),
	})
	ts.teacher = ts.token(testutil.SeedProfile(t, db, types.RoleTeacher).ID)
	ts.learner = ts.token(testutil.SeedProfile(t, db, types.RoleLearner).ID)
	return ts
}

func (s *testServer) token(id uuid.UUID) string {
	s.t.Helper()
	tok, err := s.auth.IssueAccessToken(id, "", time.Hour)
	if err != nil {
		s.t.Fatalf("IssueAccessToken: %v", err)
	}
	return tok
}

func (s *testServer) do(method, target, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status: want=%d got=%d body=%s", status, rec.Code, rec.Body.String())
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}](t, rec).Error.Code
}

func (s *testServer) createModuleAndSession(title string) (uuid.UUID, uuid.UUID) {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/modules", s.teacher, map[string]any{"title": title})
	wantStatus(s.t, rec, http.StatusCreated)
	m := decode[struct {
		Module types.Module `json:"module"`
	}](s.t, rec).Module

	rec = s.do(http.MethodPost, "/api/modules/"+m.ID.String()+"/sessions", s.teacher, map[string]any{
		"title":      "Pasal 1",
		"slides_url": "https://example.com/deck.pdf",
	})
	wantStatus(s.t, rec, http.StatusCreated)
	sess := decode[struct {
		Session types.Session `json:"session"`
	}](s.t, rec).Session
	return m.ID, sess.ID
}

func TestHealthcheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthcheck", "", nil)
	wantStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "ok" {
		t.Fatalf("body: %q", rec.Body.String())
	}
	wantStatus(t, s.do(http.MethodGet, "/readyz", "", nil), http.StatusOK)
}

func TestAccessGuardRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/modules", "", nil)
	wantStatus(t, rec, http.StatusUnauthorized)
	if rec.Header().Get(httpMW.HeaderRedirect) != "/login" {
		t.Fatalf("missing login redirect")
	}

	rec = s.do(http.MethodPost, "/api/modules", s.learner, map[string]any{"title": "x"})
	wantStatus(t, rec, http.StatusForbidden)
	if errorCode(t, rec) != "forbidden" || rec.Header().Get(httpMW.HeaderRedirect) != "/" {
		t.Fatalf("learner write: %s", rec.Body.String())
	}

	access := decode[map[string]any](t, s.do(http.MethodGet, "/api/me/access?require=teacher", s.learner, nil))
	if access["allowed"] != false || access["redirect"] != "/" {
		t.Fatalf("access answer: %v", access)
	}

	me := decode[map[string]any](t, s.do(http.MethodGet, "/api/me", s.teacher, nil))
	if me["is_teacher"] != true {
		t.Fatalf("me: %v", me)
	}
}

func TestTimestampEditingAndPlayback(t *testing.T) {
	s := newTestServer(t)
	_, sessID := s.createModuleAndSession("Injil Yohanes")
	base := "/api/sessions/" + sessID.String()

	rec := s.do(http.MethodPost, base+"/timestamps", s.teacher, map[string]any{"time": "abc"})
	wantStatus(t, rec, http.StatusBadRequest)
	if errorCode(t, rec) != "validation_error" {
		t.Fatalf("malformed time: %s", rec.Body.String())
	}

	wantStatus(t, s.do(http.MethodPost, base+"/timestamps", s.teacher, map[string]any{"time": "0:00", "slide_url": "https://example.com/a.png"}), http.StatusOK)
	rec = s.do(http.MethodPost, base+"/timestamps", s.teacher, map[string]any{"time": "1:30"})
	wantStatus(t, rec, http.StatusOK)
	second := decode[struct {
		Timestamp types.Timestamp `json:"timestamp"`
		Time      string          `json:"time"`
	}](t, rec)
	if second.Timestamp.TimestampSeconds != 90 || second.Time != "1:30" {
		t.Fatalf("upsert: %+v", second)
	}

	list := decode[struct {
		Timestamps []struct {
			TimestampSeconds int    `json:"timestamp_seconds"`
			Time             string `json:"time"`
		} `json:"timestamps"`
	}](t, s.do(http.MethodGet, base+"/timestamps", s.learner, nil))
	if len(list.Timestamps) != 2 || list.Timestamps[1].Time != "1:30" {
		t.Fatalf("list: %+v", list)
	}

	st := decode[struct {
		TimestampID *uuid.UUID `json:"timestamp_id"`
		SlideURL    *string    `json:"slide_url"`
		Position    string     `json:"position"`
	}](t, s.do(http.MethodGet, base+"/playback?t=1:35", s.learner, nil))
	if st.TimestampID == nil || *st.TimestampID != second.Timestamp.ID {
		t.Fatalf("active timestamp: %+v", st)
	}
	if st.SlideURL == nil || *st.SlideURL != "https://example.com/a.png" || st.Position != "1:35" {
		t.Fatalf("slide carried forward: %+v", st)
	}

	wantStatus(t, s.do(http.MethodGet, base+"/playback?t=-3", s.learner, nil), http.StatusBadRequest)
	wantStatus(t, s.do(http.MethodPost, base+"/timestamps", s.learner, map[string]any{"time": "0:10"}), http.StatusForbidden)
}

func TestProgressToggleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	modID, sessID := s.createModuleAndSession("Kisah Para Rasul")
	target := "/api/sessions/" + sessID.String() + "/progress"

	wantStatus(t, s.do(http.MethodPut, target, s.learner, `{}`), http.StatusBadRequest)
	for i := 0; i < 2; i++ {
		wantStatus(t, s.do(http.MethodPut, target, s.learner, map[string]any{"completed": true}), http.StatusOK)
	}
	got := decode[map[string]any](t, s.do(http.MethodGet, target, s.learner, nil))
	if got["completed"] != true {
		t.Fatalf("session progress: %v", got)
	}

	sum := decode[struct {
		Progress struct {
			Percent int `json:"percent"`
		} `json:"progress"`
	}](t, s.do(http.MethodGet, "/api/modules/"+modID.String()+"/progress", s.learner, nil))
	if sum.Progress.Percent != 100 {
		t.Fatalf("module percent: %d", sum.Progress.Percent)
	}

	rows := decode[struct {
		Progress []types.Progress `json:"progress"`
	}](t, s.do(http.MethodGet, "/api/progress", s.learner, nil))
	if len(rows.Progress) != 1 {
		t.Fatalf("idempotent toggle should leave one row, got %d", len(rows.Progress))
	}

	rec := s.do(http.MethodPut, "/api/sessions/"+uuid.NewString()+"/progress", s.learner, map[string]any{"completed": true})
	wantStatus(t, rec, http.StatusNotFound)
	wantStatus(t, s.do(http.MethodPut, "/api/sessions/not-a-uuid/progress", s.learner, map[string]any{"completed": true}), http.StatusBadRequest)
}

func TestNotesAndPatchSemantics(t *testing.T) {
	s := newTestServer(t)
	modID, sessID := s.createModuleAndSession("Roma")

	wantStatus(t, s.do(http.MethodPost, "/api/sessions/"+sessID.String()+"/notes", s.learner, map[string]any{"content": ""}), http.StatusBadRequest)
	wantStatus(t, s.do(http.MethodPost, "/api/sessions/"+sessID.String()+"/notes", s.learner, map[string]any{"content": "kasih karunia"}), http.StatusCreated)

	notes := decode[struct {
		Notes []types.Note `json:"notes"`
	}](t, s.do(http.MethodGet, "/api/notes", s.learner, nil))
	if len(notes.Notes) != 1 || notes.Notes[0].ModuleID != modID {
		t.Fatalf("notes: %+v", notes)
	}
	if others := decode[struct {
		Notes []types.Note `json:"notes"`
	}](t, s.do(http.MethodGet, "/api/notes", s.teacher, nil)); len(others.Notes) != 0 {
		t.Fatalf("notes are private: %+v", others)
	}

	rec := s.do(http.MethodPatch, "/api/modules/"+modID.String(), s.teacher, `{"description":"Surat Paulus"}`)
	wantStatus(t, rec, http.StatusOK)
	rec = s.do(http.MethodPatch, "/api/modules/"+modID.String(), s.teacher, `{"description":null}`)
	wantStatus(t, rec, http.StatusOK)
	m := decode[struct {
		Module types.Module `json:"module"`
	}](t, rec).Module
	if m.Description != nil || m.Title != "Roma" {
		t.Fatalf("patch should clear description and keep title: %+v", m)
	}

	wantStatus(t, s.do(http.MethodDelete, "/api/modules/"+modID.String(), s.teacher, nil), http.StatusNoContent)
	wantStatus(t, s.do(http.MethodGet, "/api/sessions/"+sessID.String(), s.learner, nil), http.StatusNotFound)
}

func TestSessionReorderOverHTTP(t *testing.T) {
	s := newTestServer(t)
	modID, first := s.createModuleAndSession("Mazmur")
	rec := s.do(http.MethodPost, "/api/modules/"+modID.String()+"/sessions", s.teacher, map[string]any{"title": "Pasal 2"})
	wantStatus(t, rec, http.StatusCreated)
	second := decode[struct {
		Session types.Session `json:"session"`
	}](t, rec).Session

	target := "/api/modules/" + modID.String() + "/sessions/order"
	wantStatus(t, s.do(http.MethodPut, target, s.teacher, map[string]any{"session_ids": []string{first.String()}}), http.StatusBadRequest)
	rec = s.do(http.MethodPut, target, s.teacher, map[string]any{"session_ids": []string{second.ID.String(), first.String()}})
	wantStatus(t, rec, http.StatusOK)
	got := decode[struct {
		Sessions []types.Session `json:"sessions"`
	}](t, rec).Sessions
	if len(got) != 2 || got[0].ID != second.ID || got[0].OrderIndex != 1 {
		t.Fatalf("reorder: %+v", got)
	}
}

func TestSSEStreamRequiresIdentity(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/sse/stream", "", nil)
	wantStatus(t, rec, http.StatusUnauthorized)
	if !strings.Contains(rec.Body.String(), "unauthorized") {
		t.Fatalf("body: %s", rec.Body.String())
	}
}
