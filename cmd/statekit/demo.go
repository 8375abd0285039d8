package main

import (
	"fmt"

	"github.com/aretw0/statekit/internal/demo"
	"github.com/aretw0/statekit/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newDemoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Play a scripted page and print what it shows after every step",
	}

	widgets := &cobra.Command{
		Use:   "widgets",
		Short: "Widget table under collection and per-entity dirty checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := demo.RunWidgets(a.logger, a.cfg.DirtyCheck.WatchProperty...)
			if err != nil {
				return err
			}
			return render(cmd, report)
		},
	}

	stories := &cobra.Command{
		Use:   "stories",
		Short: "Story editor whose three forms persist into one store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := demo.RunStories(a.logger, demo.StoriesOptions{
				Debounce:  a.cfg.PersistForm.Debounce(),
				FormKey:   a.cfg.PersistForm.FormKey,
				EmitEvent: a.cfg.PersistForm.EmitEvent,
			})
			if err != nil {
				return err
			}
			return render(cmd, report)
		},
	}

	cmd.AddCommand(widgets, stories)
	return cmd
}

func render(cmd *cobra.Command, report demo.Report) error {
	out, err := tui.NewRenderer(cmd.OutOrStdout())(report.Markdown())
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
