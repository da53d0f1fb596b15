package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marketapi/internal/jobs"
	"marketapi/internal/logger"
)

var jobNames = []string{jobs.JobExpire, jobs.JobComplete, jobs.JobPayout}

func newJobsCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run booking lifecycle sweeps",
	}

	run := &cobra.Command{
		Use:       "run <" + strings.Join(jobNames, "|") + ">",
		Short:     "Run one sweep now and print its result",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: jobNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.OpenApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			s := jobs.New(a.Services.Bookings, rt.Config.Jobs, a.Metrics, logger.Component(rt.Log, "jobs"))
			res, err := s.RunOnce(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.AddCommand(run)
	return cmd
}
