package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/folio-cms/folio/internal/app"
	"github.com/folio-cms/folio/internal/cli/ui"
	"github.com/spf13/cobra"
)

func newBlueprintCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "blueprint",
		Aliases: []string{"blueprints"},
		Short:   "Inspect blueprints",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List blueprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				handles := a.Blueprints.Handles()
				if len(handles) == 0 {
					fmt.Fprintf(out, "No blueprints found in %s.\n", a.Config.Blueprints.Path)
					return nil
				}

				table := ui.NewTable(out, s.noColor, "HANDLE", "TITLE", "FIELDS")
				for _, handle := range handles {
					bp, _ := a.Blueprints.Find(handle)
					table.AddRow(bp.Handle, bp.Title, strconv.Itoa(bp.Fields().Len()))
				}
				table.Render()
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <handle>",
		Short: "Show the fields of a blueprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, func(ctx context.Context, a *app.App) error {
				bp, ok := a.Blueprints.Find(args[0])
				if !ok {
					return &problem{
						text: ui.NotFound("blueprint", args[0], a.Blueprints.Handles(),
							"See all blueprints: folio blueprint list", s.noColor),
					}
				}

				out := cmd.OutOrStdout()
				ui.Header(out, bp.Title, s.noColor)

				table := ui.NewTable(out, s.noColor, "FIELD", "TYPE", "DISPLAY")
				fs := bp.Fields()
				for _, key := range fs.Keys() {
					f, _ := fs.Get(key)
					table.AddRow(f.Handle, f.Type.String(), f.Display())
				}
				table.Render()
				return nil
			})
		},
	})

	return cmd
}
