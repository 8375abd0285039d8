package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/statekit/internal/demo"
	"github.com/aretw0/statekit/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newTodosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todos",
		Short: "Manage the persisted todo list",
		Long:  `Every todos subcommand resumes the list from the session snapshot, applies one change and persists it again.`,
	}

	var where string
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List the todos that pass the visibility filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTodos(cmd, false, func(todos *demo.Todos) error {
				visible, err := todos.Visible(where)
				if err != nil {
					return err
				}
				printTodos(cmd.OutOrStdout(), todos, visible)
				return nil
			})
		},
	}
	ls.Flags().StringVar(&where, "where", "", `Expression over each todo, e.g. 'title startsWith "buy"'`)

	add := &cobra.Command{
		Use:   "add <title>...",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTodos(cmd, true, func(todos *demo.Todos) error {
				id, err := todos.Add(strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", id)
				return nil
			})
		},
	}

	var undo bool
	done := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a todo as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTodos(cmd, true, func(todos *demo.Todos) error {
				if err := todos.Complete(args[0], !undo); err != nil {
					return err
				}
				if todos.AllDone() {
					fmt.Fprintln(cmd.OutOrStdout(), "All done!")
				}
				return nil
			})
		},
	}
	done.Flags().BoolVar(&undo, "undo", false, "Mark the todo as open again")

	rm := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete todos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTodos(cmd, true, func(todos *demo.Todos) error {
				for _, id := range args {
					if err := todos.Delete(id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
				}
				return nil
			})
		},
	}

	filter := &cobra.Command{
		Use:       "filter <" + strings.Join(demo.Filters, "|") + ">",
		Short:     "Change the visibility filter",
		Args:      cobra.ExactArgs(1),
		ValidArgs: demo.Filters,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTodos(cmd, true, func(todos *demo.Todos) error {
				return todos.SetFilter(strings.ToUpper(args[0]))
			})
		},
	}

	cmd.AddCommand(ls, add, done, rm, filter)
	return cmd
}

// withTodos resumes the todo list, runs fn and persists the result when
// write is set.
func (a *app) withTodos(cmd *cobra.Command, write bool, fn func(*demo.Todos) error) error {
	ctx := cmd.Context()
	todos := demo.NewTodos(a.storeOptions()...)
	sess, err := a.resume(ctx, todos.Store.Store)
	if err != nil {
		return err
	}
	if err := fn(todos); err != nil {
		return err
	}
	if !write {
		return nil
	}
	return sess.Persist(ctx)
}

func printTodos(w io.Writer, todos *demo.Todos, visible []demo.Todo) {
	st := tui.NewStyles(w)
	fmt.Fprintln(w, st.Muted("filter: "+todos.Filter()))
	if len(visible) == 0 {
		fmt.Fprintln(w, "No todos.")
		return
	}
	for _, t := range visible {
		mark := st.Pending("[ ]")
		if t.Completed {
			mark = st.Done("[x]")
		}
		fmt.Fprintf(w, "%s %s  %s\n", mark, t.Title, st.Muted(t.ID))
	}
	if todos.AllDone() {
		fmt.Fprintln(w, st.Done("All done!"))
	}
}
