package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/apphost/bootstrap"
	"github.com/kbukum/apphost/version"
)

// exitError carries a non-zero exit code out of cobra.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// newRootCmd builds the command tree. The root passes its raw arguments to
// the bootstrap, which parses them itself so unknown flags survive as
// passthrough.
func newRootCmd(start func(args []string) int) *cobra.Command {
	root := &cobra.Command{
		Use:                version.AppName,
		Short:              "Run the application host",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := start(args); code != 0 {
				return exitError{code: code}
			}
			return nil
		},
	}
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionInfo().String())
			return err
		},
	}
}

func execute(args []string) int {
	root := newRootCmd(func(args []string) int { return bootstrap.Start(args) })
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
