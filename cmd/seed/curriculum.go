package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/belajar-alkitab-backend/internal/app"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
	"github.com/yungbote/belajar-alkitab-backend/internal/seed"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.yaml>...",
	Short: "Check curriculum files without touching the database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			c, err := loadCurriculum(path)
			if err == nil {
				err = c.Validate()
			}
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s\n%v\n", path, err)
				continue
			}
			m, s, ts := c.Counts()
			fmt.Fprintf(cmd.OutOrStdout(), "OK   %s (%d modules, %d sessions, %d timestamps)\n", path, m, s, ts)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files invalid", failed, len(args))
		}
		return nil
	},
}

var importOpts struct {
	as           string
	skipExisting bool
	dryRun       bool
}

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create the modules, sessions and timestamps of a curriculum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCurriculum(args[0])
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if importOpts.dryRun {
			m, s, ts := c.Counts()
			fmt.Fprintf(cmd.OutOrStdout(), "dry run: would import %d modules, %d sessions, %d timestamps\n", m, s, ts)
			return nil
		}
		teacherID, err := uuid.Parse(strings.TrimSpace(importOpts.as))
		if err != nil || teacherID == uuid.Nil {
			return fmt.Errorf("--as must be the teacher's user id")
		}

		ctx := cmd.Context()
		a, err := app.New(ctx)
		if err != nil {
			return fmt.Errorf("init app: %w", err)
		}
		defer func() { _ = a.Shutdown(context.Background()) }()

		dbc := dbctx.Context{Ctx: ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: teacherID})}
		importer := seed.NewImporter(a.Log, a.Services.Module, a.Services.Session, a.Services.Timestamp)
		rep, err := importer.Import(dbc, c, seed.ImportOptions{SkipExisting: importOpts.skipExisting})
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d modules, %d sessions, %d timestamps\n", rep.Modules, rep.Sessions, rep.Timestamps)
		for _, title := range rep.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped existing module %q\n", title)
		}
		return err
	},
}

func init() {
	importCmd.Flags().StringVar(&importOpts.as, "as", "", "user id of the teacher performing the import")
	importCmd.Flags().BoolVar(&importOpts.skipExisting, "skip-existing", false, "leave modules whose title already exists")
	importCmd.Flags().BoolVar(&importOpts.dryRun, "dry-run", false, "validate and print counts without writing")
}

func loadCurriculum(path string) (*seed.Curriculum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := seed.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
