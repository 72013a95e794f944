package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos"
	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos/testutil"
	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
)

func TestTimestampUpsertParsesAndSorts(t *testing.T) {
	env := newTestEnv(t)
	teacher, _ := env.as(t, types.RoleTeacher)
	learner, _ := env.as(t, types.RoleLearner)
	_, sess := env.seedSession(t, teacher)

	if _, err := env.timestamps.Upsert(teacher, sess.ID, UpsertTimestampInput{Time: "3:20", SlideURL: testutil.Ptr("C")}); err != nil {
		t.Fatalf("Upsert 3:20: %v", err)
	}
	if _, err := env.timestamps.Upsert(teacher, sess.ID, UpsertTimestampInput{Seconds: testutil.Ptr(0), SlideURL: testutil.Ptr("A")}); err != nil {
		t.Fatalf("Upsert 0: %v", err)
	}
	b, err := env.timestamps.Upsert(teacher, sess.ID, UpsertTimestampInput{Time: "1:30", SlideURL: testutil.Ptr("B")})
	if err != nil {
		t.Fatalf("Upsert 1:30: %v", err)
	}
	if b.TimestampSeconds != 90 {
		t.Fatalf("1:30 stored as %d", b.TimestampSeconds)
	}

	list, err := env.timestamps.List(learner, sess.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []int{0, 90, 200}
	for i, ts := range list {
		if ts.TimestampSeconds != want[i] {
			t.Fatalf("list[%d]=%d want %d", i, ts.TimestampSeconds, want[i])
		}
	}

	// Upsert with an id edits in place.
	edited, err := env.timestamps.Upsert(teacher, sess.ID, UpsertTimestampInput{ID: &b.ID, Time: "1:45", SlideURL: testutil.Ptr("B2")})
	if err != nil {
		t.Fatalf("Upsert edit: %v", err)
	}
	if edited.ID != b.ID || edited.TimestampSeconds != 105 {
		t.Fatalf("edited: %+v", edited)
	}
	if n := env.count(t, &types.Timestamp{}, "session_id = ?", sess.ID); n != 3 {
		t.Fatalf("edit must not insert, rows=%d", n)
	}
}

func TestTimestampUpsertRejectsMalformedTime(t *testing.T) {
	env := newTestEnv(t)
	teacher, _ := env.as(t, types.RoleTeacher)
	_, sess := env.seedSession(t, teacher)

	for _, in := range []UpsertTimestampInput{
		{Time: "abc"},
		{Time: "1:7"},
		{Time: "0:60"},
		{Seconds: testutil.Ptr(-5)},
		{},
	} {
		if _, err := env.timestamps.Upsert(teacher, sess.ID, in); !apierr.IsValidation(err) {
			t.Fatalf("input %+v: want validation error, got %v", in, err)
		}
	}
	if n := env.count(t, &types.Timestamp{}, "session_id = ?", sess.ID); n != 0 {
		t.Fatalf("invalid input reached persistence: %d rows", n)
	}
}

func TestTimestampUpsertForeignID(t *testing.T) {
	env := newTestEnv(t)
	teacher, _ := env.as(t, types.RoleTeacher)
	m, a := env.seedSession(t, teacher)
	other, err := env.sessions.Create(teacher, m.ID, CreateSessionInput{Title: "Lain"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	ts, err := env.timestamps.Upsert(teacher, other.ID, UpsertTimestampInput{Time: "0:10"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := env.timestamps.Upsert(teacher, a.ID, UpsertTimestampInput{ID: &ts.ID, Time: "0:20"}); !apierr.IsNotFound(err) {
		t.Fatalf("editing another session's timestamp: want not found, got %v", err)
	}
}

func TestTimestampDeleteKeepsNotes(t *testing.T) {
	env := newTestEnv(t)
	teacher, _ := env.as(t, types.RoleTeacher)
	learner, _ := env.as(t, types.RoleLearner)
	_, sess := env.seedSession(t, teacher)

	ts, err := env.timestamps.Upsert(teacher, sess.ID, UpsertTimestampInput{Time: "0:30"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	note, err := env.notes.Create(learner, sess.ID, CreateNoteInput{TimestampID: &ts.ID, Content: "Ayat 3"})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	if err := env.timestamps.Delete(teacher, ts.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var kept types.Note
	if err := env.db.First(&kept, "id = ?", note.ID).Error; err != nil {
		t.Fatalf("note gone: %v", err)
	}
	if kept.TimestampID != nil || kept.Content != "Ayat 3" {
		t.Fatalf("note after timestamp delete: %+v", kept)
	}
	if err := env.timestamps.Delete(teacher, ts.ID); !apierr.IsNotFound(err) {
		t.Fatalf("second delete: want not found, got %v", err)
	}
}

func TestTimestampUpdate(t *testing.T) {
	env := newTestEnv(t)
	teacher, _ := env.as(t, types.RoleTeacher)
	_, sess := env.seedSession(t, teacher)
	ts, err := env.timestamps.Upsert(teacher, sess.ID, UpsertTimestampInput{Time: "0:30", SlideURL: testutil.Ptr("A")})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := env.timestamps.Update(teacher, ts.ID, UpdateTimestampInput{Seconds: testutil.Ptr(42)})
	if err != nil {
		t.Fatalf("Update seconds: %v", err)
	}
	if got.TimestampSeconds != 42 || got.SlideURL == nil || *got.SlideURL != "A" {
		t.Fatalf("after seconds update: %+v", got)
	}
	got, err = env.timestamps.Update(teacher, ts.ID, UpdateTimestampInput{SlideURL: OptionalString{Set: true}})
	if err != nil {
		t.Fatalf("Update slide: %v", err)
	}
	if got.SlideURL != nil {
		t.Fatalf("slide should be cleared: %v", *got.SlideURL)
	}
	if _, err := env.timestamps.Update(teacher, uuid.New(), UpdateTimestampInput{Seconds: testutil.Ptr(1)}); !apierr.IsNotFound(err) {
		t.Fatalf("unknown timestamp: want not found, got %v", err)
	}
}

func TestPlaybackResolvesSlides(t *testing.T) {
	env := newTestEnv(t)
	teacher, _ := env.as(t, types.RoleTeacher)
	learner, _ := env.as(t, types.RoleLearner)
	_, sess := env.seedSession(t, teacher)

	a, _ := env.timestamps.Upsert(teacher, sess.ID, UpsertTimestampInput{Time: "0:10", SlideURL: testutil.Ptr("A")})
	b, _ := env.timestamps.Upsert(teacher, sess.ID, UpsertTimestampInput{Time: "1:30"})

	cases := []struct {
		t      int
		id     *uuid.UUID
		slide  string
		nextAt *int
	}{
		{t: 5, slide: "https://example.com/markus.pdf", nextAt: testutil.Ptr(10)},
		{t: 10, id: &a.ID, slide: "A", nextAt: testutil.Ptr(90)},
		{t: 500, id: &b.ID, slide: "A"},
	}
	for _, tc := range cases {
		st, err := env.timestamps.Playback(learner, sess.ID, tc.t)
		if err != nil {
			t.Fatalf("Playback(%d): %v", tc.t, err)
		}
		if (tc.id == nil) != (st.TimestampID == nil) || (tc.id != nil && *tc.id != *st.TimestampID) {
			t.Fatalf("Playback(%d) timestamp id: want=%v got=%v", tc.t, tc.id, st.TimestampID)
		}
		if st.SlideURL == nil || *st.SlideURL != tc.slide {
			t.Fatalf("Playback(%d) slide: want=%q got=%v", tc.t, tc.slide, st.SlideURL)
		}
		if (tc.nextAt == nil) != (st.NextChangeAt == nil) || (tc.nextAt != nil && *tc.nextAt != *st.NextChangeAt) {
			t.Fatalf("Playback(%d) next change: want=%v got=%v", tc.t, tc.nextAt, st.NextChangeAt)
		}
	}

	if _, err := env.timestamps.Playback(learner, sess.ID, -1); !apierr.IsValidation(err) {
		t.Fatalf("negative t: want validation, got %v", err)
	}
	if _, err := env.timestamps.Playback(learner, uuid.New(), 0); !apierr.IsNotFound(err) {
		t.Fatalf("unknown session: want not found, got %v", err)
	}
}

// vanishingTimestampRepo loses the row between the update and the re-read.
type vanishingTimestampRepo struct {
	repos.TimestampRepo
	reads int
}

func (r *vanishingTimestampRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Timestamp, error) {
	r.reads++
	if r.reads > 1 {
		return nil, nil
	}
	return r.TimestampRepo.GetByID(dbc, id)
}

func TestTimestampUpsertReportsRowGoneAfterUpdate(t *testing.T) {
	env := newTestEnv(t)
	teacher, _ := env.as(t, types.RoleTeacher)
	_, sess := env.seedSession(t, teacher)
	ts, err := env.timestamps.Upsert(teacher, sess.ID, UpsertTimestampInput{Time: "0:10"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	log := testutil.Logger(t)
	vanishing := &vanishingTimestampRepo{TimestampRepo: repos.NewTimestampRepo(env.db, log)}
	svc := NewTimestampService(env.db, log, env.guard, repos.NewSessionRepo(env.db, log), vanishing, repos.NewNoteRepo(env.db, log), env.notifier)

	if _, err := svc.Upsert(teacher, sess.ID, UpsertTimestampInput{ID: &ts.ID, Time: "0:20"}); !apierr.IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}
