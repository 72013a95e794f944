package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos"
	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos/testutil"
	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

const curriculumYAML = `
modules:
  - title: Injil Markus
    description: Pelajaran Injil Markus
    sessions:
      - title: Pasal 1
        youtube_url: https://youtu.be/markus-1
        reflection_questions:
          - Siapa yang dipanggil Yesus?
        timestamps:
          - time: "0:00"
            slide_url: https://cdn.example.org/markus/1.png
          - time: "1:30"
            slide_url: https://cdn.example.org/markus/2.png
          - seconds: 200
      - title: Pasal 2
  - title: Kisah Para Rasul
`

func TestParseAndCounts(t *testing.T) {
	c, err := Parse(strings.NewReader(curriculumYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	m, s, ts := c.Counts()
	if m != 2 || s != 2 || ts != 3 {
		t.Fatalf("counts: modules=%d sessions=%d timestamps=%d", m, s, ts)
	}
	if pos, _ := c.Modules[0].Sessions[0].Timestamps[1].Position(); pos != 90 {
		t.Fatalf("position of 1:30: %d", pos)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("modules:\n  - title: A\n    sesions: []\n"))
	if err == nil || !strings.Contains(err.Error(), "sesions") {
		t.Fatalf("typo field should fail, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	c, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty input: %v", err)
	}
	if len(c.Modules) != 0 {
		t.Fatalf("modules: %d", len(c.Modules))
	}
}

func TestValidateReportsPaths(t *testing.T) {
	c, err := Parse(strings.NewReader(`
modules:
  - title: ""
  - title: Roma
    sessions:
      - title: ""
        timestamps:
          - time: "1:75"
          - seconds: -3
          - {}
          - time: "0:10"
          - seconds: 10
  - title: roma
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	err = c.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{
		"modules[0]: title is required",
		"modules[1].sessions[0]: title is required",
		"modules[1].sessions[0].timestamps[0]",
		"modules[1].sessions[0].timestamps[1]: seconds must not be negative",
		"modules[1].sessions[0].timestamps[2]: time or seconds is required",
		"modules[1].sessions[0].timestamps[4]: position 0:10 duplicates timestamps[3]",
		"modules[2]: title \"roma\" duplicates modules[1]",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in:\n%v", want, err)
		}
	}
}

type importEnv struct {
	importer *Importer
	modules  services.ModuleService
	sessions services.SessionService
	stamps   services.TimestampService
	teacher  dbctx.Context
	learner  dbctx.Context
}

func newImportEnv(t *testing.T) *importEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	moduleRepo := repos.NewModuleRepo(db, log)
	sessionRepo := repos.NewSessionRepo(db, log)
	timestampRepo := repos.NewTimestampRepo(db, log)
	noteRepo := repos.NewNoteRepo(db, log)
	progressRepo := repos.NewProgressRepo(db, log)
	profiles := services.NewProfileService(db, log, repos.NewProfileRepo(db, log), 0)
	guard := services.NewAccessGuard(log, profiles)
	notifier := services.NewChangeNotifier(log, nil)
	cache := services.NewProgressCache()

	env := &importEnv{
		modules:  services.NewModuleService(db, log, guard, moduleRepo, sessionRepo, timestampRepo, noteRepo, progressRepo, cache, notifier),
		sessions: services.NewSessionService(db, log, guard, moduleRepo, sessionRepo, timestampRepo, noteRepo, progressRepo, cache, notifier),
		stamps:   services.NewTimestampService(db, log, guard, sessionRepo, timestampRepo, noteRepo, notifier),
	}
	env.importer = NewImporter(log, env.modules, env.sessions, env.stamps)
	as := func(role string) dbctx.Context {
		p := testutil.SeedProfile(t, db, role)
		return dbctx.Context{Ctx: ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: p.ID})}
	}
	env.teacher = as(types.RoleTeacher)
	env.learner = as(types.RoleLearner)
	return env
}

func TestImportWritesCurriculumInOrder(t *testing.T) {
	env := newImportEnv(t)
	c, err := Parse(strings.NewReader(curriculumYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rep, err := env.importer.Import(env.teacher, c, ImportOptions{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if rep.Modules != 2 || rep.Sessions != 2 || rep.Timestamps != 3 || len(rep.Skipped) != 0 {
		t.Fatalf("report: %+v", rep)
	}

	mods, err := env.modules.List(env.teacher, false)
	if err != nil || len(mods) != 2 {
		t.Fatalf("modules: %d err=%v", len(mods), err)
	}
	var markus *types.Module
	for _, m := range mods {
		if m.Title == "Injil Markus" {
			markus = m
		}
	}
	if markus == nil {
		t.Fatalf("Injil Markus not imported")
	}
	sess, err := env.sessions.ListForModule(env.teacher, markus.ID)
	if err != nil || len(sess) != 2 {
		t.Fatalf("sessions: %d err=%v", len(sess), err)
	}
	if sess[0].Title != "Pasal 1" || sess[1].Title != "Pasal 2" || sess[0].OrderIndex >= sess[1].OrderIndex {
		t.Fatalf("session order: %q(%d) %q(%d)", sess[0].Title, sess[0].OrderIndex, sess[1].Title, sess[1].OrderIndex)
	}
	stamps, err := env.stamps.List(env.teacher, sess[0].ID)
	if err != nil || len(stamps) != 3 {
		t.Fatalf("timestamps: %d err=%v", len(stamps), err)
	}
	if stamps[1].TimestampSeconds != 90 || stamps[2].SlideURL != nil {
		t.Fatalf("timestamps: %+v %+v", stamps[1], stamps[2])
	}
}

func TestImportSkipExisting(t *testing.T) {
	env := newImportEnv(t)
	if _, err := env.modules.Create(env.teacher, services.CreateModuleInput{Title: "kisah para rasul"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	c, _ := Parse(strings.NewReader(curriculumYAML))
	rep, err := env.importer.Import(env.teacher, c, ImportOptions{SkipExisting: true})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if rep.Modules != 1 || len(rep.Skipped) != 1 || rep.Skipped[0] != "Kisah Para Rasul" {
		t.Fatalf("report: %+v", rep)
	}
}

func TestImportRequiresTeacherAndValidCurriculum(t *testing.T) {
	env := newImportEnv(t)
	c, _ := Parse(strings.NewReader(curriculumYAML))
	if _, err := env.importer.Import(env.learner, c, ImportOptions{}); !apierr.IsAuthorization(err) {
		t.Fatalf("learner import: want forbidden, got %v", err)
	}

	bad := &Curriculum{Modules: []Module{{Title: " "}}}
	rep, err := env.importer.Import(env.teacher, bad, ImportOptions{})
	if err == nil || rep.Modules != 0 {
		t.Fatalf("invalid curriculum should be rejected before writing: %+v %v", rep, err)
	}
}
