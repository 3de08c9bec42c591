package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/weft/internal/cli"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect persisted run snapshots",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored run ids",
			Args:  cobra.NoArgs,
			RunE: withSnapshots(func(cmd *cobra.Command, rt *cli.Runtime, args []string) error {
				ids, err := rt.Snapshots.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "show <run-id>",
			Short: "Print a run snapshot as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: withSnapshots(func(cmd *cobra.Command, rt *cli.Runtime, args []string) error {
				snap, err := rt.Snapshots.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}),
		},
		&cobra.Command{
			Use:   "delete <run-id>",
			Short: "Delete a run snapshot",
			Args:  cobra.ExactArgs(1),
			RunE: withSnapshots(func(cmd *cobra.Command, rt *cli.Runtime, args []string) error {
				return rt.Snapshots.Delete(cmd.Context(), args[0])
			}),
		},
	)
	return cmd
}

func withSnapshots(fn func(cmd *cobra.Command, rt *cli.Runtime, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, _, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		if rt.Snapshots == nil {
			return errors.New("snapshots are disabled (snapshots.driver: none)")
		}
		return fn(cmd, rt, args)
	}
}
