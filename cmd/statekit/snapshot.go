package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage persisted session snapshots",
		Long:  `List, inspect, and remove the snapshots stored by the configured backend.`,
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List all stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := a.backend.Manager.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored sessions found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stored Sessions:")
			for _, s := range sessions {
				fmt.Fprintln(cmd.OutOrStdout(), "- "+s)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print the snapshot of a session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.backend.Manager.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", args[0], err)
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("error marshaling snapshot: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	var all bool
	rm := &cobra.Command{
		Use:   "rm [session-id]...",
		Short: "Remove one or more sessions",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("--all does not take session ids")
			}
			if !all && len(args) == 0 {
				return errors.New("requires at least one session id, or --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ids := args
			if all {
				var err error
				if ids, err = a.backend.Manager.List(ctx); err != nil {
					return fmt.Errorf("error listing sessions: %w", err)
				}
			}
			var errs []error
			for _, id := range ids {
				if err := a.backend.Manager.Delete(ctx, id); err != nil {
					errs = append(errs, fmt.Errorf("error removing '%s': %w", id, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
			}
			return errors.Join(errs...)
		},
	}
	rm.Flags().BoolVar(&all, "all", false, "Remove every stored session")

	cmd.AddCommand(ls, show, rm)
	return cmd
}
