package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"recibo/internal/cli"
)

func receiptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "Browse scanned receipts",
	}

	cmd.AddCommand(listReceiptsCmd())
	cmd.AddCommand(showReceiptCmd())
	cmd.AddCommand(deleteReceiptCmd())

	return cmd
}

func listReceiptsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent receipts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			receipts, err := store.GetReceipts(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to get receipts: %w", err)
			}

			if len(receipts) == 0 {
				fmt.Println(cli.InfoStyle.Render("No receipts yet. Use 'recibo scan <url>' to add one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "ID\tDate\tMerchant\tItems\tTotal\n")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 10),
				strings.Repeat("-", 30), strings.Repeat("-", 5), strings.Repeat("-", 10))

			for _, r := range receipts {
				date := r.ScannedAt.Format("2006-01-02")
				if r.IssuedAt != nil {
					date = r.IssuedAt.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\tR$ %.2f\n", r.ID, date, r.Merchant, len(r.Items), r.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of receipts to show")
	return cmd
}

func showReceiptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one receipt with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid receipt ID: %w", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			receipt, err := store.GetReceiptByID(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get receipt: %w", err)
			}
			if receipt == nil {
				return fmt.Errorf("receipt %d not found", id)
			}

			printReceipt(receipt)
			return nil
		},
	}
}

func deleteReceiptCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a receipt and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid receipt ID: %w", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if !force {
				fmt.Printf("Are you sure you want to delete receipt %d? (y/N): ", id)
				var response string
				_, _ = fmt.Scanln(&response)
				if strings.ToLower(response) != "y" {
					fmt.Println("Deletion cancelled.")
					return nil
				}
			}

			if err := store.DeleteReceipt(ctx, id); err != nil {
				return fmt.Errorf("failed to delete receipt: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted receipt %d", id)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")
	return cmd
}
