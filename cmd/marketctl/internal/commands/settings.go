package commands

import (
	"github.com/spf13/cobra"
)

func newSettingsCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change platform settings",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.OpenApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.Services.Settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.OpenApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.Services.Settings.Update(cmd.Context(), map[string]string{args[0]: args[1]})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}
