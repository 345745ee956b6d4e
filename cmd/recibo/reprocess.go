package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"recibo/internal/cli"
	"recibo/internal/rules"
)

func reprocessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reprocess",
		Short: "Re-classify uncategorized items",
		Long: `Run the resolver again over every item that has no category or sits
in the fallback bucket. Useful after adding corrections or enabling the
AI tier.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			items, err := store.GetUncategorizedItems(ctx)
			if err != nil {
				return fmt.Errorf("failed to get uncategorized items: %w", err)
			}
			if len(items) == 0 {
				fmt.Println(cli.InfoStyle.Render("Nothing to reprocess."))
				return nil
			}

			resolver, cleanup, err := initResolver(store)
			if err != nil {
				return err
			}
			defer cleanup()

			names := make([]string, 0, len(items))
			for _, item := range items {
				names = append(names, item.Name)
			}
			resolved := resolver.ResolveBatch(ctx, names)

			bar := progressbar.NewOptions(len(items),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Reprocessing items..."),
			)

			var updated int
			for _, item := range items {
				category := resolved[item.Name]
				if category != "" && category != item.Category && category != rules.Uncategorized {
					if err := store.UpdateItemCategory(ctx, item.ID, category); err != nil {
						return fmt.Errorf("failed to update item %d: %w", item.ID, err)
					}
					updated++
				}
				_ = bar.Add(1)
			}
			fmt.Fprintln(os.Stderr)

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Reprocessed %d items, updated %d", len(items), updated)))
			return nil
		},
	}
}
