// Command seed validates and imports YAML curricula, and carries the small
// operator tasks a fresh deployment needs (promoting the first teacher,
// minting a development token).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/shutdown"
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Curriculum seeding and operator tools",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(validateCmd, importCmd, grantTeacherCmd, tokenCmd)
	ctx, stop := shutdown.NotifyContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
