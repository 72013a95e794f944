package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/belajar-alkitab-backend/internal/app"
	types "github.com/yungbote/belajar-alkitab-backend/internal/domain"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/dbctx"
)

// grant-teacher writes the role directly; the API route for role changes
// needs an existing teacher, so the first one is promoted here.
var grantTeacherCmd = &cobra.Command{
	Use:   "grant-teacher <user-id>",
	Short: "Give a user the teacher role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		a, err := app.New(ctx)
		if err != nil {
			return fmt.Errorf("init app: %w", err)
		}
		defer func() { _ = a.Shutdown(context.Background()) }()

		dbc := dbctx.Context{Ctx: ctx}
		if err := a.Repos.Profile.Ensure(dbc, &types.Profile{ID: userID, Role: types.RoleLearner}); err != nil {
			return fmt.Errorf("ensure profile: %w", err)
		}
		if _, err := a.Repos.Profile.UpdateRole(dbc, userID, types.RoleTeacher); err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now a teacher\n", userID)
		return nil
	},
}

var tokenOpts struct {
	email string
	ttl   time.Duration
}

// token signs an access token with the configured JWT_SECRET_KEY, for local
// development against a stub identity provider.
var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint an access token for local development",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context())
		if err != nil {
			return fmt.Errorf("init app: %w", err)
		}
		defer func() { _ = a.Shutdown(context.Background()) }()

		tok, err := a.Services.Auth.IssueAccessToken(userID, tokenOpts.email, tokenOpts.ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOpts.email, "email", "", "email claim")
	tokenCmd.Flags().DurationVar(&tokenOpts.ttl, "ttl", time.Hour, "token lifetime")
}

func parseUserID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}
