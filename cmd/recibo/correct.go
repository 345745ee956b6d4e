package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"recibo/internal/cli"
)

func correctCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "correct <item-id> <category>",
		Short: "Correct an item's category",
		Long: `Reassign a line item to a different category and remember the
correction. Future items with the same name are classified from the
correction before any rule or AI tier runs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item ID: %w", err)
			}
			newCategory := args[1]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			item, err := store.GetItemByID(ctx, itemID)
			if err != nil {
				return fmt.Errorf("failed to get item: %w", err)
			}
			if item == nil {
				return fmt.Errorf("item %d not found", itemID)
			}

			resolver, cleanup, err := initResolver(store)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := resolver.RecordCorrection(ctx, item.Name, item.Category, newCategory); err != nil {
				return fmt.Errorf("failed to record correction: %w", err)
			}

			if err := store.UpdateItemCategory(ctx, itemID, newCategory); err != nil {
				return fmt.Errorf("failed to update item: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%q moved to %s", item.Name, newCategory)))
			return nil
		},
	}
}
