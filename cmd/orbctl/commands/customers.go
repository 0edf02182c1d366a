package commands

import (
	"github.com/spf13/cobra"

	orb "github.com/modelrelay/orb-go"
	"github.com/modelrelay/orb-go/pagination"
)

func (c *cli) customersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Inspect customers",
	}
	cmd.AddCommand(c.customersGetCmd(), c.customersListCmd())
	return cmd
}

func (c *cli) customersGetCmd() *cobra.Command {
	var external bool
	cmd := &cobra.Command{
		Use:   "get <customer-id>",
		Short: "Show one customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				customer *orb.Customer
				err      error
			)
			if external {
				customer, err = c.client.Customers.FetchByExternalID(cmd.Context(), args[0])
			} else {
				customer, err = c.client.Customers.Fetch(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return c.printCustomers(cmd, []orb.Customer{*customer})
		},
	}
	cmd.Flags().BoolVar(&external, "external", false, "treat the ID as an external customer ID")
	return cmd
}

func (c *cli) customersListCmd() *cobra.Command {
	var (
		limit int64
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &orb.CustomerListParams{}
			if limit > 0 {
				params.Limit = orb.Int(limit)
			}
			page, err := c.client.Customers.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			customers := page.Data
			if all {
				if customers, err = collect(cmd, page); err != nil {
					return err
				}
			}
			return c.printCustomers(cmd, customers)
		},
	}
	cmd.Flags().Int64Var(&limit, "limit", 0, "page size")
	cmd.Flags().BoolVar(&all, "all", false, "follow cursors to the last page")
	return cmd
}

func (c *cli) printCustomers(cmd *cobra.Command, customers []orb.Customer) error {
	if c.output == "json" {
		return printJSON(cmd.OutOrStdout(), customers)
	}
	t := newTable(cmd.OutOrStdout(), "ID", "EXTERNAL ID", "NAME", "EMAIL", "CURRENCY", "BALANCE")
	for _, cu := range customers {
		t.row(cu.ID, str(cu.ExternalCustomerID), cu.Name, cu.Email, str(cu.Currency), cu.Balance)
	}
	return t.flush()
}

// collect reads every item from page onward.
func collect[T any](cmd *cobra.Command, page *orb.Page[T]) ([]T, error) {
	var out []T
	for item, err := range pagination.NewAutoPager(page, nil).All(cmd.Context()) {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
