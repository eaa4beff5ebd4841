package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"boqtrack/internal/api"
	"boqtrack/internal/boq"
	"boqtrack/internal/resource"
	"boqtrack/internal/transport"
)

func newResourcesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "List and edit BOQ collections",
	}
	for _, res := range boq.Catalog() {
		cmd.AddCommand(newResourceCmd(app, res))
	}
	return cmd
}

func newResourceCmd(app *App, res boq.Resource) *cobra.Command {
	cmd := &cobra.Command{
		Use:   res.Name,
		Short: fmt.Sprintf("Operations on %s", res.Name),
	}
	cmd.AddCommand(newListCmd(app, res))
	cmd.AddCommand(newGetCmd(app, res))
	cmd.AddCommand(newCreateCmd(app, res))
	cmd.AddCommand(newUpdateCmd(app, res))
	cmd.AddCommand(newDeleteCmd(app, res))
	return cmd
}

func newListCmd(app *App, res boq.Resource) *cobra.Command {
	var (
		page    int
		size    int
		search  string
		filters []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + res.Name,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(app); err != nil {
				return err
			}
			q := resource.Query{Page: page, PageSize: size, Search: search}
			pairs, err := parseSetFlags(filters)
			if err != nil {
				return err
			}
			for k, v := range pairs {
				q = q.WithFilter(k, v)
			}

			done := make(chan resource.Snapshot[api.Record], 4)
			ctrl := resource.NewListController(
				cmd.Context(),
				app.API.ListerFor(res),
				resource.WithQuery[api.Record](q),
				resource.WithOnChange(func(s resource.Snapshot[api.Record]) { done <- s }),
			)
			snap, err := awaitList(ctrl, done, time.Duration(app.Cfg.API.TimeoutSec+5)*time.Second)
			if err != nil {
				return err
			}
			if snap.State == resource.Failed {
				report(app, snap.Err, resource.KindError)
				return fmt.Errorf("list %s failed", res.Name)
			}
			return writeJSON(app, map[string]any{
				"records":     snap.Records,
				"total":       snap.Total,
				"page":        snap.Query.Page,
				"page_size":   snap.Query.PageSize,
				"total_pages": snap.TotalPages(),
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&size, "page-size", 0, "Records per page (0 = configured default)")
	cmd.Flags().StringVar(&search, "search", "", "Search term")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Extra filter, key=value (repeatable)")
	cmd.PreRun = func(*cobra.Command, []string) {
		if size == 0 {
			size = app.Cfg.UI.PageSize
		}
	}
	return cmd
}

func newGetCmd(app *App, res boq.Resource) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(app); err != nil {
				return err
			}
			rec, err := app.API.Get(cmd.Context(), res, args[0])
			if err != nil {
				return err
			}
			return writeJSON(app, rec)
		},
	}
}

func newCreateCmd(app *App, res boq.Resource) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(app); err != nil {
				return err
			}
			pairs, err := parseSetFlags(sets)
			if err != nil {
				return err
			}

			form := resource.NewFormController(res.Schema, app.API.SubmitterFor(res), nil)
			form.OpenCreate(map[string]any{})
			for k, v := range pairs {
				if err := form.UpdateField(k, v); err != nil {
					return err
				}
			}
			if err := form.Submit(cmd.Context()); err != nil {
				report(app, err.Error(), resource.KindError)
				return err
			}
			report(app, fmt.Sprintf("created %s", res.Name), resource.KindSuccess)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value, key=value (repeatable)")
	return cmd
}

func newUpdateCmd(app *App, res boq.Resource) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(app); err != nil {
				return err
			}
			pairs, err := parseSetFlags(sets)
			if err != nil {
				return err
			}
			current, err := app.API.Get(cmd.Context(), res, args[0])
			if err != nil {
				return err
			}

			form := resource.NewFormController(res.Schema, app.API.SubmitterFor(res), nil)
			if err := form.OpenEdit(current); err != nil {
				return err
			}
			for k, v := range pairs {
				if err := form.UpdateField(k, v); err != nil {
					return err
				}
			}
			if err := form.Submit(cmd.Context()); err != nil {
				report(app, err.Error(), resource.KindError)
				return err
			}
			report(app, fmt.Sprintf("updated %s", res.Describe(current)), resource.KindSuccess)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value, key=value (repeatable)")
	return cmd
}

func newDeleteCmd(app *App, res boq.Resource) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record (asks for confirmation)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(app); err != nil {
				return err
			}
			rec, err := app.API.Get(cmd.Context(), res, args[0])
			if err != nil {
				return err
			}

			flow := resource.NewDeleteFlow(res.Schema.IDField, app.API.DeleterFor(res), nil)
			if err := flow.RequestDelete(rec); err != nil {
				return err
			}

			if !yes && !confirm(app, fmt.Sprintf("Delete %s? [y/N] ", res.Describe(rec))) {
				flow.Cancel()
				fmt.Fprintln(app.out(), "aborted")
				return nil
			}
			if err := flow.Confirm(cmd.Context()); err != nil {
				if transport.IsUnauthorized(err) {
					report(app, "not authorized", resource.KindError)
				} else {
					report(app, err.Error(), resource.KindError)
				}
				return err
			}
			report(app, fmt.Sprintf("deleted %s", res.Describe(rec)), resource.KindSuccess)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion up front")
	return cmd
}

// confirm reads one line and accepts only an explicit y/yes.
func confirm(app *App, prompt string) bool {
	fmt.Fprint(app.out(), prompt)
	sc := bufio.NewScanner(app.in())
	if !sc.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "y" || answer == "yes"
}
