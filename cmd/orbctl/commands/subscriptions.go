package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	orb "github.com/modelrelay/orb-go"
)

func (c *cli) subscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "Inspect and cancel subscriptions",
	}
	cmd.AddCommand(c.subscriptionsGetCmd(), c.subscriptionsListCmd(), c.subscriptionsCancelCmd())
	return cmd
}

func (c *cli) subscriptionsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <subscription-id>",
		Short: "Show one subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := c.client.Subscriptions.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printSubscriptions(cmd, *sub)
		},
	}
}

func (c *cli) subscriptionsListCmd() *cobra.Command {
	var (
		customers         []string
		externalCustomers []string
		status            string
		all               bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &orb.SubscriptionListParams{}
			if len(customers) > 0 {
				params.CustomerID = orb.F(customers)
			}
			if len(externalCustomers) > 0 {
				params.ExternalCustomerID = orb.F(externalCustomers)
			}
			if status != "" {
				params.Status = orb.F(orb.SubscriptionStatus(status))
			}
			page, err := c.client.Subscriptions.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			subs := page.Data
			if all {
				if subs, err = collect(cmd, page); err != nil {
					return err
				}
			}
			return c.printSubscriptions(cmd, subs...)
		},
	}
	cmd.Flags().StringSliceVar(&customers, "customer", nil, "filter by Orb customer ID (repeatable)")
	cmd.Flags().StringSliceVar(&externalCustomers, "external-customer", nil, "filter by external customer ID (repeatable)")
	cmd.Flags().StringVar(&status, "status", "", "active, ended or upcoming")
	cmd.Flags().BoolVar(&all, "all", false, "follow cursors to the last page")
	return cmd
}

func (c *cli) subscriptionsCancelCmd() *cobra.Command {
	var (
		option string
		on     string
	)
	cmd := &cobra.Command{
		Use:   "cancel <subscription-id>",
		Short: "Cancel a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := orb.SubscriptionCancelParams{CancelOption: orb.F(orb.CancelOption(option))}
			if on != "" {
				t, err := parseTime(on)
				if err != nil {
					return err
				}
				params.CancellationDate = orb.Time(t)
			}
			sub, err := c.client.Subscriptions.Cancel(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			c.logger.Info().Str("subscription_id", sub.ID).Str("option", option).Msg("subscription canceled")
			return c.printSubscriptions(cmd, *sub)
		},
	}
	cmd.Flags().StringVar(&option, "option", string(orb.CancelOptionEndOfSubscriptionTerm),
		fmt.Sprintf("%s, %s or %s", orb.CancelOptionEndOfSubscriptionTerm, orb.CancelOptionImmediate, orb.CancelOptionRequestedDate))
	cmd.Flags().StringVar(&on, "date", "", "cancellation date for requested_date")
	return cmd
}

func (c *cli) printSubscriptions(cmd *cobra.Command, subs ...orb.Subscription) error {
	if c.output == "json" {
		return printJSON(cmd.OutOrStdout(), subs)
	}
	t := newTable(cmd.OutOrStdout(), "ID", "CUSTOMER", "PLAN", "STATUS", "START", "END")
	for _, s := range subs {
		start := s.StartDate
		t.row(s.ID, s.Customer.ID, s.Plan.Name, statusLabel(string(s.Status)), date(&start), date(s.EndDate))
	}
	return t.flush()
}
