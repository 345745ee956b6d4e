package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recibo/internal/cli"
	"recibo/internal/engine"
	"recibo/internal/model"
	"recibo/internal/nfce"
)

func scanCmd() *cobra.Command {
	var issuer string

	cmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Scan an NFC-e consultation URL",
		Long: `Fetch the NFC-e page behind the given URL, extract its data and save
the receipt. Scanning a URL that was already scanned returns the stored
receipt without fetching.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			url := args[0]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			resolver, cleanup, err := initResolver(store)
			if err != nil {
				return err
			}
			defer cleanup()

			ingestor := engine.NewIngestor(store, nfce.NewFetcher(fetchTimeout()), resolver, nil)

			receipt, cached, err := ingestor.ScanURL(ctx, url, issuer)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			if cached {
				fmt.Println(cli.FormatWarning("URL already scanned, showing stored receipt"))
			} else {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Receipt saved (ID: %d)", receipt.ID)))
			}
			printReceipt(receipt)
			return nil
		},
	}

	cmd.Flags().StringVar(&issuer, "issuer", "", "issuer layout hint (rs, sp, rj; autodetect when empty)")
	return cmd
}

func printReceipt(r *model.Receipt) {
	fmt.Println(cli.FormatTitle(r.Merchant))
	if r.Address != "" {
		fmt.Println(cli.SubtleStyle.Render(r.Address))
	}
	if r.IssuedAt != nil {
		fmt.Println(cli.SubtleStyle.Render("Issued " + r.IssuedAt.Format("2006-01-02")))
	}
	for _, item := range r.Items {
		category := item.Category
		if category == "" {
			category = "—"
		}
		fmt.Printf("  %-40s x%.2f  R$ %8.2f  %s\n",
			item.Name, item.Quantity, item.UnitValue, cli.InfoStyle.Render(category))
	}
	fmt.Println(cli.BoldStyle.Render(fmt.Sprintf("Total: R$ %.2f", r.Total)))
}
