package commands

import (
	"github.com/spf13/cobra"

	orb "github.com/modelrelay/orb-go"
)

func (c *cli) ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Read and write the credit ledger",
	}
	cmd.PersistentFlags().Bool("external", false, "treat the customer ID as an external customer ID")
	cmd.AddCommand(
		c.ledgerListCmd(),
		c.ledgerIncrementCmd(),
		c.ledgerDecrementCmd(),
		c.ledgerVoidCmd(),
	)
	return cmd
}

func isExternal(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("external")
	return v
}

func (c *cli) ledgerListCmd() *cobra.Command {
	var (
		entryType string
		status    string
		limit     int64
		all       bool
	)
	cmd := &cobra.Command{
		Use:   "list <customer-id>",
		Short: "List ledger entries, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &orb.LedgerListParams{}
			if entryType != "" {
				params.EntryType = orb.F(orb.ParseEntryType(entryType))
			}
			if status != "" {
				params.EntryStatus = orb.F(orb.ParseEntryStatus(status))
			}
			if limit > 0 {
				params.Limit = orb.Int(limit)
			}
			var (
				page *orb.Page[orb.CreditLedgerEntry]
				err  error
			)
			if isExternal(cmd) {
				page, err = c.client.Ledger.ListByExternalID(cmd.Context(), args[0], params)
			} else {
				page, err = c.client.Ledger.List(cmd.Context(), args[0], params)
			}
			if err != nil {
				return err
			}
			entries := page.Data
			if all {
				if entries, err = collect(cmd, page); err != nil {
					return err
				}
			}
			return c.printEntries(cmd, entries...)
		},
	}
	cmd.Flags().StringVar(&entryType, "type", "", "entry type, e.g. increment or expiration-change")
	cmd.Flags().StringVar(&status, "status", "", "committed or pending")
	cmd.Flags().Int64Var(&limit, "limit", 0, "page size")
	cmd.Flags().BoolVar(&all, "all", false, "follow cursors to the last page")
	return cmd
}

func (c *cli) ledgerIncrementCmd() *cobra.Command {
	var (
		amount      float64
		currency    string
		description string
		expiry      string
		costBasis   string
		netTerms    int64
		invoice     bool
	)
	cmd := &cobra.Command{
		Use:   "increment <customer-id>",
		Short: "Add credits in a new block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := orb.IncrementEntryParams{Amount: orb.Float(amount)}
			if currency != "" {
				params.Currency = orb.String(currency)
			}
			if description != "" {
				params.Description = orb.String(description)
			}
			if expiry != "" {
				t, err := parseTime(expiry)
				if err != nil {
					return err
				}
				params.ExpiryDate = orb.Time(t)
			}
			if costBasis != "" {
				params.PerUnitCostBasis = orb.String(costBasis)
			}
			if invoice {
				params.InvoiceSettings = orb.F(orb.InvoiceSettingsParams{
					AutoCollection: orb.Bool(true),
					NetTerms:       orb.Int(netTerms),
				})
			}
			return c.newEntry(cmd, args[0], params)
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "credits to add")
	cmd.Flags().StringVar(&currency, "currency", "", "credit currency")
	cmd.Flags().StringVar(&description, "description", "", "entry description")
	cmd.Flags().StringVar(&expiry, "expiry", "", "block expiry (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&costBasis, "cost-basis", "", "per-unit cost basis")
	cmd.Flags().BoolVar(&invoice, "invoice", false, "invoice the customer for the credits")
	cmd.Flags().Int64Var(&netTerms, "net-terms", 0, "invoice net terms in days")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (c *cli) ledgerDecrementCmd() *cobra.Command {
	var (
		amount      float64
		currency    string
		description string
	)
	cmd := &cobra.Command{
		Use:   "decrement <customer-id>",
		Short: "Deduct credits, oldest-expiring first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := orb.DecrementEntryParams{Amount: orb.Float(amount)}
			if currency != "" {
				params.Currency = orb.String(currency)
			}
			if description != "" {
				params.Description = orb.String(description)
			}
			return c.newEntry(cmd, args[0], params)
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "credits to deduct")
	cmd.Flags().StringVar(&currency, "currency", "", "credit currency")
	cmd.Flags().StringVar(&description, "description", "", "entry description")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (c *cli) ledgerVoidCmd() *cobra.Command {
	var (
		amount  float64
		blockID string
		refund  bool
	)
	cmd := &cobra.Command{
		Use:   "void <customer-id>",
		Short: "Void credits in a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := orb.VoidEntryParams{
				Amount:  orb.Float(amount),
				BlockID: orb.String(blockID),
			}
			if refund {
				params.VoidReason = orb.F(orb.VoidReasonRefund)
			}
			return c.newEntry(cmd, args[0], params)
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "credits to void")
	cmd.Flags().StringVar(&blockID, "block", "", "credit block ID")
	cmd.Flags().BoolVar(&refund, "refund", false, "record the void as a refund")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("block")
	return cmd
}

func (c *cli) newEntry(cmd *cobra.Command, customerID string, params orb.CreditLedgerEntryParams) error {
	create := c.client.Ledger.NewEntry
	if isExternal(cmd) {
		create = c.client.Ledger.NewEntryByExternalID
	}
	entry, err := create(cmd.Context(), customerID, params)
	if err != nil {
		return err
	}
	c.logger.Info().
		Str("entry_id", entry.Common().ID).
		Str("entry_type", string(entry.EntryType())).
		Msg("ledger entry created")
	return c.printEntries(cmd, *entry)
}

func (c *cli) printEntries(cmd *cobra.Command, entries ...orb.CreditLedgerEntry) error {
	if c.output == "json" {
		return printJSON(cmd.OutOrStdout(), entries)
	}
	t := newTable(cmd.OutOrStdout(), "ID", "TYPE", "STATUS", "AMOUNT", "BALANCE", "BLOCK", "CREATED")
	for _, e := range entries {
		base := e.Common()
		created := base.CreatedAt
		t.row(base.ID, statusLabel(string(base.EntryType)), statusLabel(string(base.EntryStatus)),
			num(base.Amount), num(base.EndingBalance), base.CreditBlock.ID, date(&created))
	}
	return t.flush()
}
