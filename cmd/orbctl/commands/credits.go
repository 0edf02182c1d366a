package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	orb "github.com/modelrelay/orb-go"
)

func (c *cli) creditsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Inspect prepaid credit balances",
	}
	cmd.AddCommand(c.creditsBalanceCmd())
	return cmd
}

func (c *cli) creditsBalanceCmd() *cobra.Command {
	var (
		external  bool
		currency  string
		allBlocks bool
	)
	cmd := &cobra.Command{
		Use:   "balance <customer-id>",
		Short: "Show a customer's credit blocks and their total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &orb.CreditListParams{}
			if currency != "" {
				params.Currency = orb.String(currency)
			}
			if allBlocks {
				params.IncludeAllBlocks = orb.Bool(true)
			}
			var (
				page *orb.Page[orb.CreditBalance]
				err  error
			)
			if external {
				page, err = c.client.Credits.ListByExternalID(cmd.Context(), args[0], params)
			} else {
				page, err = c.client.Credits.List(cmd.Context(), args[0], params)
			}
			if err != nil {
				return err
			}
			blocks, err := collect(cmd, page)
			if err != nil {
				return err
			}

			var total float64
			for _, b := range blocks {
				total += b.Balance
			}
			if c.output == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{"blocks": blocks, "total": total})
			}
			t := newTable(cmd.OutOrStdout(), "BLOCK", "BALANCE", "STATUS", "EXPIRES", "COST BASIS")
			for _, b := range blocks {
				t.row(b.ID, num(b.Balance), statusLabel(string(b.Status)), date(b.ExpiryDate), str(b.PerUnitCostBasis))
			}
			if err := t.flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %s\n", num(total))
			return err
		},
	}
	cmd.Flags().BoolVar(&external, "external", false, "treat the ID as an external customer ID")
	cmd.Flags().StringVar(&currency, "currency", "", "only blocks in this currency")
	cmd.Flags().BoolVar(&allBlocks, "include-empty", false, "include blocks with a zero balance")
	return cmd
}
