package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/VitoPalumboPodcast/Invalsi/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update [version]",
	Short: "Update invalsi to the latest release, or to the given one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		logger := setupLogging(v, os.Stderr)
		checkOnly, _ := cmd.Flags().GetBool("check")

		checker := selfupdate.NewChecker(
			selfupdate.WithTimeout(2*time.Minute),
			selfupdate.WithLogger(logger),
		)
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		current := currentVersion()
		if checkOnly {
			res, err := checker.Check(ctx, current)
			if err != nil {
				return explainUpdateError(err)
			}
			if !res.UpdateAvailable {
				fmt.Printf("invalsi %s is the latest version.\n", current)
				return nil
			}
			fmt.Printf("invalsi %s is available (running %s): %s\n", res.LatestVersion, current, res.ReleaseURL)
			return nil
		}

		var target string
		if len(args) == 1 {
			target = args[0]
		}
		err := checker.Update(ctx, current, target, func(p selfupdate.Progress) {
			fmt.Println(p.Message)
		})
		return explainUpdateError(err)
	},
}

func explainUpdateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, selfupdate.ErrDevBuild):
		fmt.Println("Cannot update a development build. Install a release build first.")
		return nil
	case errors.Is(err, selfupdate.ErrAlreadyLatest):
		fmt.Println("Already running the latest version.")
		return nil
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w\n\nTry running: sudo invalsi update", err)
	}
	return err
}

func init() {
	updateCmd.Flags().Bool("check", false, "Only report whether a newer release exists")
}
