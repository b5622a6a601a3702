package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Kutay07/ContentLab-sub000/internal/search"
)

func newSearchCmd() *cobra.Command {
	var typ, group string
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over published content",
		Long: `Search queries Meilisearch when MEILI_URL is configured and reachable, and
falls back to PostgreSQL full-text search otherwise.

Example:
  contentlab search "fractions" --type level
  contentlab search reindex`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rtyp, ok := search.ParseResultType(typ)
			if !ok {
				return fmt.Errorf("unknown --type %q (want group, level or component)", typ)
			}
			svc, err := rt.searchService(cmd.Context())
			if err != nil {
				return err
			}
			resp := svc.Search(cmd.Context(), search.Query{
				Text:          args[0],
				FilterType:    rtyp,
				FilterGroupID: group,
				Limit:         limit,
				Offset:        offset,
			})
			if jsonOut {
				return printJSON(resp)
			}
			if len(resp.Results) == 0 {
				printInfo("No results for %q\n", resp.Query)
				return nil
			}
			w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tID\tTITLE\tSNIPPET")
			for _, r := range resp.Results {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Type, r.ID, r.Title, r.Snippet)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printInfo("%d of %d result(s)\n", len(resp.Results), resp.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "Only return group, level or component results")
	cmd.Flags().StringVar(&group, "group", "", "Only return results inside this group")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Results to skip")

	cmd.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Push the published hierarchy to Meilisearch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if rt.cfg.MeiliURL == "" {
				return fmt.Errorf("MEILI_URL is not set")
			}
			pg, err := rt.postgres(ctx)
			if err != nil {
				return err
			}
			h, err := pg.FetchHierarchy(ctx)
			if err != nil {
				return err
			}
			svc, err := rt.searchService(ctx)
			if err != nil {
				return err
			}
			n, err := svc.ReindexAll(ctx, h)
			if err != nil {
				return err
			}
			printInfo("Indexed %d record(s)\n", n)
			return nil
		},
	})
	return cmd
}
