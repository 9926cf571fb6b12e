package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/folio-cms/folio/internal/app"
	"github.com/folio-cms/folio/internal/augment"
	"github.com/folio-cms/folio/internal/cli/ui"
	"github.com/folio-cms/folio/internal/entries"
	"github.com/spf13/cobra"
)

func newAugmentCommand(s *session) *cobra.Command {
	var (
		only   []string
		except []string
		site   string
	)

	cmd := &cobra.Command{
		Use:   "augment <collection> <entry.yaml>",
		Short: "Print the augmented projection of an entry as JSON",
		Long: `Load an entry file into a collection and print the values a template
would see: blueprint fields wrapped by their fieldtype, plus the computed
entry keys (id, slug, url, permalink, order, collection, published).`,
		Example: `  folio augment blog content/blog/hello.yaml
  folio augment blog content/blog/hello.yaml --only title,permalink
  folio augment blog content/blog/hello.yaml --except content --site fr`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, func(ctx context.Context, a *app.App) error {
				c, err := findCollection(ctx, s, a, args[0])
				if err != nil {
					return err
				}

				e, err := entries.Load(args[1], c)
				if err != nil {
					return err
				}

				if site == "" {
					site = a.Sites.Default()
				}
				siteConfig, ok := a.Sites.Get(site)
				if !ok {
					return &problem{
						text: ui.NotFound("site", site, a.Sites.All(), "", s.noColor),
					}
				}

				projection := entries.Augmented(e, siteConfig.URL)

				var result *augment.Result
				switch {
				case len(only) > 0:
					result = projection.Select(only...)
				case len(except) > 0:
					result = projection.Except(except...)
				default:
					result = projection.All()
				}

				encoded, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode entry: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "keys to include")
	cmd.Flags().StringSliceVar(&except, "except", nil, "keys to leave out")
	cmd.Flags().StringVar(&site, "site", "", "site whose URL prefixes permalinks (default site when empty)")
	cmd.MarkFlagsMutuallyExclusive("only", "except")

	return cmd
}
