package seed

import (
	"fmt"
	"strings"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/services"
)

type ImportOptions struct {
	// SkipExisting leaves modules whose title already exists untouched.
	SkipExisting bool
}

type Report struct {
	Modules    int
	Sessions   int
	Timestamps int
	Skipped    []string
}

// Importer writes a curriculum through the content services, so the caller
// in dbc must be a teacher and every write emits its usual change event.
type Importer struct {
	log        *logger.Logger
	modules    services.ModuleService
	sessions   services.SessionService
	timestamps services.TimestampService
}

func NewImporter(log *logger.Logger, modules services.ModuleService, sessions services.SessionService, timestamps services.TimestampService) *Importer {
	return &Importer{
		log:        log.With("component", "SeedImporter"),
		modules:    modules,
		sessions:   sessions,
		timestamps: timestamps,
	}
}

// Import validates c and then creates it module by module. A failure stops
// the import; modules written before it stay in place and are listed in the
// returned report.
func (im *Importer) Import(dbc dbctx.Context, c *Curriculum, opts ImportOptions) (Report, error) {
	var rep Report
	if err := c.Validate(); err != nil {
		return rep, err
	}

	existing := map[string]bool{}
	if opts.SkipExisting {
		mods, err := im.modules.List(dbc, false)
		if err != nil {
			return rep, fmt.Errorf("list modules: %w", err)
		}
		for _, m := range mods {
			existing[strings.ToLower(strings.TrimSpace(m.Title))] = true
		}
	}

	for mi, m := range c.Modules {
		title := strings.TrimSpace(m.Title)
		if existing[strings.ToLower(title)] {
			rep.Skipped = append(rep.Skipped, title)
			im.log.Info("Skipping existing module", "title", title)
			continue
		}
		created, err := im.modules.Create(dbc, services.CreateModuleInput{
			Title:        title,
			Description:  optional(m.Description),
			ThumbnailURL: optional(m.ThumbnailURL),
		})
		if err != nil {
			return rep, fmt.Errorf("modules[%d] %q: %w", mi, title, err)
		}
		rep.Modules++

		for si, s := range m.Sessions {
			sess, err := im.sessions.Create(dbc, created.ID, services.CreateSessionInput{
				Title:               strings.TrimSpace(s.Title),
				Description:         optional(s.Description),
				ThumbnailURL:        optional(s.ThumbnailURL),
				YoutubeURL:          optional(s.YoutubeURL),
				SlidesURL:           optional(s.SlidesURL),
				TeacherNotes:        optional(s.TeacherNotes),
				ReflectionQuestions: s.ReflectionQuestions,
			})
			if err != nil {
				return rep, fmt.Errorf("modules[%d].sessions[%d]: %w", mi, si, err)
			}
			rep.Sessions++

			for ti, ts := range s.Timestamps {
				pos, _ := ts.Position()
				if _, err := im.timestamps.Upsert(dbc, sess.ID, services.UpsertTimestampInput{
					Seconds:  &pos,
					SlideURL: optional(ts.SlideURL),
				}); err != nil {
					return rep, fmt.Errorf("modules[%d].sessions[%d].timestamps[%d]: %w", mi, si, ti, err)
				}
				rep.Timestamps++
			}
		}
		im.log.Info("Imported module", "title", title, "sessions", len(m.Sessions))
	}
	return rep, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
