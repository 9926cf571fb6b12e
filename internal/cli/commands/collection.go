package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/folio-cms/folio/internal/app"
	"github.com/folio-cms/folio/internal/cli/ui"
	"github.com/folio-cms/folio/internal/collections"
	utilstrings "github.com/folio-cms/folio/internal/util/strings"
	"github.com/spf13/cobra"
)

func newCollectionCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"collections"},
		Short:   "Manage content collections",
	}

	cmd.AddCommand(
		newCollectionListCommand(s),
		newCollectionShowCommand(s),
		newCollectionCreateCommand(s),
		newCollectionDeleteCommand(s),
		newCollectionPositionCommand(s),
		newCollectionOrderCommand(s),
		newCollectionBetweenCommand(s),
	)
	return cmd
}

// findCollection loads a collection, turning a missing one into a
// suggestion listing the closest known handles.
func findCollection(ctx context.Context, s *session, a *app.App, handle string) (*collections.Collection, error) {
	c, err := a.Collections.Find(ctx, handle)
	if err == nil {
		return c, nil
	}
	if !collections.IsNotFound(err) {
		return nil, err
	}

	known, _ := a.Collections.Handles(ctx)
	return nil, &problem{
		text:  ui.NotFound("collection", handle, known, "See all collections: folio collection list", s.noColor),
		cause: err,
	}
}

func newCollectionListCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, func(ctx context.Context, a *app.App) error {
				all, err := a.Collections.All(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(all) == 0 {
					fmt.Fprintln(out, "No collections found.")
					return nil
				}

				table := ui.NewTable(out, s.noColor, "HANDLE", "TITLE", "ROUTE", "SORT", "SITES")
				for _, c := range all {
					table.AddRow(c.Handle(), c.Title(), c.Route(),
						c.SortField()+" "+c.SortDirection(),
						strings.Join(c.Sites(), ","))
				}
				table.Render()
				return nil
			})
		},
	}
}

func newCollectionShowCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show <handle>",
		Short: "Show a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, func(ctx context.Context, a *app.App) error {
				c, err := findCollection(ctx, s, a, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				ui.Header(out, c.Title(), s.noColor)

				table := ui.NewKeyValueTable(out, s.noColor)
				table.AddRow("Handle", c.Handle())
				table.AddRow("Route", orNone(c.Route()))
				table.AddRow("Template", c.Template())
				table.AddRow("Layout", c.Layout())
				table.AddRow("Sites", strings.Join(c.Sites(), ", "))
				table.AddRow("Blueprints", strings.Join(c.EntryBlueprintHandles(), ", "))
				table.AddRow("Dated", strconv.FormatBool(c.Dated()))
				table.AddRow("Orderable", strconv.FormatBool(c.Orderable()))
				table.AddRow("Sort", c.SortField()+" "+c.SortDirection())
				table.AddRow("Future dates", string(c.FutureDateBehavior()))
				table.AddRow("Past dates", string(c.PastDateBehavior()))
				table.AddRow("Published by default", strconv.FormatBool(c.DefaultPublishState()))
				table.AddRow("Revisions", strconv.FormatBool(c.RevisionsEnabled()))
				table.AddRow("Inject", orNone(formatCascade(c.Cascade())))
				table.AddRow("Positioned entries", strconv.Itoa(c.Positions().Len()))
				table.Render()
				return nil
			})
		},
	}
}

type createOptions struct {
	title       string
	route       string
	template    string
	layout      string
	sites       []string
	blueprints  []string
	dated       bool
	orderable   bool
	future      string
	past        string
	publish     bool
	revisions   bool
	inject      map[string]string
	interactive bool
}

func newCollectionCreateCommand(s *session) *cobra.Command {
	opts := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create <handle>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, func(ctx context.Context, a *app.App) error {
				handle := args[0]
				if _, err := a.Collections.Find(ctx, handle); err == nil {
					return fmt.Errorf("collection %s already exists", handle)
				} else if !collections.IsNotFound(err) {
					return err
				}

				if opts.interactive {
					if err := promptCreate(a, handle, opts); err != nil {
						return err
					}
				}

				c, err := buildCollection(a.Collections.Make(handle), cmd, opts)
				if err != nil {
					return err
				}
				if err := a.Collections.Save(ctx, c); err != nil {
					return err
				}

				ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Created collection %s", handle), s.noColor)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.title, "title", "", "display title (default derived from the handle)")
	flags.StringVar(&opts.route, "route", "", "entry route, e.g. /blog/{slug}")
	flags.StringVar(&opts.template, "template", "", "entry template")
	flags.StringVar(&opts.layout, "layout", "", "entry layout")
	flags.StringSliceVar(&opts.sites, "sites", nil, "site handles")
	flags.StringSliceVar(&opts.blueprints, "blueprints", nil, "entry blueprint handles, first is the default")
	flags.BoolVar(&opts.dated, "dated", false, "entries carry a date")
	flags.BoolVar(&opts.orderable, "orderable", false, "entries are ordered manually")
	flags.StringVar(&opts.future, "future", "", "visibility of future dated entries (public, private, unlisted)")
	flags.StringVar(&opts.past, "past", "", "visibility of past dated entries (public, private, unlisted)")
	flags.BoolVar(&opts.publish, "publish", true, "publish new entries by default")
	flags.BoolVar(&opts.revisions, "revisions", false, "enable revisions")
	flags.StringToStringVar(&opts.inject, "inject", nil, "cascade values, key=value")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "prompt for settings")

	return cmd
}

// buildCollection applies the create options. Flags left at their defaults
// keep the collection defaults.
func buildCollection(c *collections.Collection, cmd *cobra.Command, opts *createOptions) (*collections.Collection, error) {
	future, err := collections.ParseDateBehavior(opts.future)
	if err != nil {
		return nil, err
	}
	past, err := collections.ParseDateBehavior(opts.past)
	if err != nil {
		return nil, err
	}

	if opts.title != "" {
		c.SetTitle(opts.title)
	}
	if opts.route != "" {
		c.SetRoute(opts.route)
	}
	if opts.template != "" {
		c.SetTemplate(opts.template)
	}
	if opts.layout != "" {
		c.SetLayout(opts.layout)
	}
	if len(opts.sites) > 0 {
		c.SetSites(opts.sites)
	}
	if len(opts.blueprints) > 0 {
		c.SetEntryBlueprints(opts.blueprints)
	}
	if opts.future != "" {
		c.SetFutureDateBehavior(future)
	}
	if opts.past != "" {
		c.SetPastDateBehavior(past)
	}
	if cmd.Flags().Changed("publish") {
		c.SetDefaultPublishState(opts.publish)
	}
	if cmd.Flags().Changed("revisions") {
		c.SetRevisionsEnabled(opts.revisions)
	}
	for key, value := range opts.inject {
		c.PutCascade(key, value)
	}

	return c.SetDated(opts.dated).SetOrderable(opts.orderable), nil
}

func promptCreate(a *app.App, handle string, opts *createOptions) error {
	if opts.title == "" {
		if err := survey.AskOne(&survey.Input{
			Message: "Title:",
			Default: utilstrings.Headline(handle),
		}, &opts.title, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	if opts.route == "" {
		if err := survey.AskOne(&survey.Input{
			Message: "Route (empty for none):",
			Default: "/" + handle + "/{slug}",
		}, &opts.route); err != nil {
			return err
		}
	}

	if available := a.Blueprints.Handles(); len(opts.blueprints) == 0 && len(available) > 0 {
		if err := survey.AskOne(&survey.MultiSelect{
			Message: "Entry blueprints:",
			Options: available,
		}, &opts.blueprints); err != nil {
			return err
		}
	}

	if a.Sites.IsMultiSite() && len(opts.sites) == 0 {
		if err := survey.AskOne(&survey.MultiSelect{
			Message: "Sites:",
			Options: a.Sites.All(),
			Default: []string{a.Sites.Default()},
		}, &opts.sites); err != nil {
			return err
		}
	}

	if err := survey.AskOne(&survey.Confirm{Message: "Dated entries?", Default: opts.dated}, &opts.dated); err != nil {
		return err
	}
	if opts.dated {
		behaviors := []string{
			string(collections.DatePublic),
			string(collections.DatePrivate),
			string(collections.DateUnlisted),
		}
		if err := survey.AskOne(&survey.Select{
			Message: "Future dated entries are:",
			Options: behaviors,
			Default: string(collections.DatePrivate),
		}, &opts.future); err != nil {
			return err
		}
	}

	return survey.AskOne(&survey.Confirm{Message: "Ordered manually?", Default: opts.orderable}, &opts.orderable)
}

func newCollectionDeleteCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <handle>",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, func(ctx context.Context, a *app.App) error {
				c, err := findCollection(ctx, s, a, args[0])
				if err != nil {
					return err
				}
				if err := c.Delete(ctx); err != nil {
					return err
				}
				ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Deleted collection %s", args[0]), s.noColor)
				return nil
			})
		},
	}
}

func newCollectionPositionCommand(s *session) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "position <handle> <entry> [position]",
		Short: "Set or remove the position of an entry",
		Long: `Set the position of an entry in a collection.

Without a position the entry is placed after the last positioned entry.
Positions are sparse; the rank of an entry is its place in ascending order.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remove && len(args) == 3 {
				return errors.New("--remove does not take a position")
			}

			var position int
			if len(args) == 3 {
				p, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("invalid position %q: must be an integer", args[2])
				}
				position = p
			}

			return s.run(cmd, func(ctx context.Context, a *app.App) error {
				c, err := findCollection(ctx, s, a, args[0])
				if err != nil {
					return err
				}

				entry := args[1]
				var message string
				switch {
				case remove:
					if !c.RemoveEntryPosition(entry) {
						return fmt.Errorf("entry %s has no position in %s", entry, c.Handle())
					}
					message = fmt.Sprintf("Removed %s from %s", entry, c.Handle())
				case len(args) == 3:
					c.SetEntryPosition(entry, position)
					message = fmt.Sprintf("Placed %s at position %d in %s", entry, position, c.Handle())
				default:
					appended, err := c.AppendEntry(entry)
					if err != nil {
						return fmt.Errorf("cannot append %s to %s: %w", entry, c.Handle(), err)
					}
					position = appended
					message = fmt.Sprintf("Placed %s at position %d in %s", entry, position, c.Handle())
				}

				if err := c.Save(ctx); err != nil {
					return err
				}
				ui.WriteSuccess(cmd.OutOrStdout(), message, s.noColor)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "remove the entry from the ordering")
	return cmd
}

func newCollectionBetweenCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "between <handle> <entry> <before> <after>",
		Short: "Move an entry between two positioned entries",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, func(ctx context.Context, a *app.App) error {
				c, err := findCollection(ctx, s, a, args[0])
				if err != nil {
					return err
				}

				position, err := c.PlaceEntryBetween(args[1], args[2], args[3])
				if err != nil {
					return fmt.Errorf("cannot place %s between %s and %s: %w", args[1], args[2], args[3], err)
				}
				if err := c.Save(ctx); err != nil {
					return err
				}

				ui.WriteSuccess(cmd.OutOrStdout(),
					fmt.Sprintf("Placed %s at position %d in %s", args[1], position, c.Handle()), s.noColor)
				return nil
			})
		},
	}
}

func newCollectionOrderCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "order <handle>",
		Short: "Show the entry order of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, func(ctx context.Context, a *app.App) error {
				c, err := findCollection(ctx, s, a, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				positions := c.EntryPositions()
				if len(positions) == 0 {
					fmt.Fprintf(out, "No positioned entries in %s.\n", c.Handle())
					return nil
				}

				table := ui.NewTable(out, s.noColor, "RANK", "POSITION", "ENTRY")
				for i, p := range positions {
					table.AddRow(strconv.Itoa(i+1), strconv.Itoa(p.Position), p.ID)
				}
				table.Render()
				return nil
			})
		},
	}
}

func formatCascade(cascade map[string]any) string {
	keys := make([]string, 0, len(cascade))
	for k := range cascade {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, cascade[k])
	}
	return strings.Join(parts, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
