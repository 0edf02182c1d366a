package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	orb "github.com/modelrelay/orb-go"
)

func (c *cli) topUpsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topups",
		Short: "Manage automatic credit top-ups",
	}
	cmd.PersistentFlags().Bool("external", false, "treat the customer ID as an external customer ID")
	cmd.AddCommand(c.topUpsListCmd(), c.topUpsCreateCmd(), c.topUpsDeleteCmd())
	return cmd
}

func (c *cli) topUpsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <customer-id>",
		Short: "List a customer's top-ups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := c.client.TopUps.List
			if isExternal(cmd) {
				list = c.client.TopUps.ListByExternalID
			}
			page, err := list(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			topUps, err := collect(cmd, page)
			if err != nil {
				return err
			}
			return c.printTopUps(cmd, topUps...)
		},
	}
}

func (c *cli) topUpsCreateCmd() *cobra.Command {
	var (
		amount       string
		currency     string
		threshold    string
		costBasis    string
		netTerms     int64
		autoCollect  bool
		expiresAfter int64
		expiresUnit  string
	)
	cmd := &cobra.Command{
		Use:   "create <customer-id>",
		Short: "Create or replace the top-up for a currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := orb.TopUpNewParams{
				Amount:           orb.String(amount),
				Currency:         orb.String(currency),
				Threshold:        orb.String(threshold),
				PerUnitCostBasis: orb.String(costBasis),
				InvoiceSettings: orb.F(orb.InvoiceSettingsParams{
					AutoCollection: orb.Bool(autoCollect),
					NetTerms:       orb.Int(netTerms),
				}),
			}
			if expiresAfter > 0 {
				params.ExpiresAfter = orb.Int(expiresAfter)
			}
			if expiresUnit != "" {
				unit := orb.ExpiresAfterUnit(expiresUnit)
				if !unit.IsKnown() {
					return fmt.Errorf("unknown expiry unit %q: use day or month", expiresUnit)
				}
				params.ExpiresAfterUnit = orb.F(unit)
			}
			create := c.client.TopUps.New
			if isExternal(cmd) {
				create = c.client.TopUps.NewByExternalID
			}
			topUp, err := create(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			c.logger.Info().Str("top_up_id", topUp.ID).Msg("top-up saved")
			return c.printTopUps(cmd, *topUp)
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "credits added per top-up")
	cmd.Flags().StringVar(&currency, "currency", "", "credit currency")
	cmd.Flags().StringVar(&threshold, "threshold", "", "balance that triggers a top-up")
	cmd.Flags().StringVar(&costBasis, "cost-basis", "", "per-unit cost basis")
	cmd.Flags().Int64Var(&netTerms, "net-terms", 0, "invoice net terms in days")
	cmd.Flags().BoolVar(&autoCollect, "auto-collect", true, "collect the invoice automatically")
	cmd.Flags().Int64Var(&expiresAfter, "expires-after", 0, "credits expire after this many units")
	cmd.Flags().StringVar(&expiresUnit, "expires-unit", "", "day or month")
	for _, name := range []string{"amount", "currency", "threshold", "cost-basis"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (c *cli) topUpsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <customer-id> <top-up-id>",
		Short: "Delete a top-up",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remove := c.client.TopUps.Delete
			if isExternal(cmd) {
				remove = c.client.TopUps.DeleteByExternalID
			}
			if err := remove(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted top-up %s\n", args[1])
			return err
		},
	}
}

func (c *cli) printTopUps(cmd *cobra.Command, topUps ...orb.TopUp) error {
	if c.output == "json" {
		return printJSON(cmd.OutOrStdout(), topUps)
	}
	t := newTable(cmd.OutOrStdout(), "ID", "CURRENCY", "AMOUNT", "THRESHOLD", "COST BASIS", "EXPIRES AFTER")
	for _, tu := range topUps {
		expires := "-"
		if tu.ExpiresAfter != nil && tu.ExpiresAfterUnit != nil {
			expires = fmt.Sprintf("%d %s", *tu.ExpiresAfter, *tu.ExpiresAfterUnit)
		}
		t.row(tu.ID, tu.Currency, tu.Amount, tu.Threshold, tu.PerUnitCostBasis, expires)
	}
	return t.flush()
}
