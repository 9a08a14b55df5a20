package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/animelist/internal/mylist"
	"github.com/example/animelist/internal/status"
)

func newListCmd(app *App) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the watch list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			label, err := parseFilter(filter)
			if err != nil {
				return err
			}
			entries, err := app.List.List(cmd.Context(), status.FilterCode(label))
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n", e.ID, e.JikanID, status.ToLabel(e.Status), e.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "status", "", `status label to filter by, e.g. "Completed"`)
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var (
		ref   mylist.AnimeRef
		label string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an anime to the watch list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ref.JikanID <= 0 {
				return errors.New("--jikan-id must be positive")
			}
			l, err := parseLabel(label)
			if err != nil {
				return err
			}
			if err := app.List.Create(cmd.Context(), ref, l); err != nil {
				if ae, ok := mylist.AsAPIError(err); ok {
					return errors.New(ae.Msg)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d (%s)\n", ref.JikanID, l)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&ref.JikanID, "jikan-id", 0, "Jikan anime id")
	f.StringVar(&ref.Title, "title", "", "anime title")
	f.StringVar(&ref.Image, "image", "", "cover image URL")
	f.StringVar(&label, "status", string(status.LabelWantToWatch), "initial status label")
	_ = cmd.MarkFlagRequired("jikan-id")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newSetStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status ID LABEL",
		Short: "Change the status of a list entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := parseLabel(args[1])
			if err != nil {
				return err
			}
			if err := app.List.Update(cmd.Context(), args[0], l); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s (%s)\n", args[0], l)
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove a list entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.List.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

// parseLabel accepts one of the six display labels.
func parseLabel(s string) (status.Label, error) {
	for _, l := range status.Labels() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown status %q (want one of %v)", s, status.Labels())
}

func parseFilter(s string) (status.Label, error) {
	if s == "" || s == string(status.LabelAll) {
		return "", nil
	}
	return parseLabel(s)
}
