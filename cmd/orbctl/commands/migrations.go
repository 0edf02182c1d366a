package commands

import (
	"time"

	"github.com/spf13/cobra"

	orb "github.com/modelrelay/orb-go"
)

func (c *cli) migrationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrations",
		Short: "Inspect and cancel plan migrations",
	}
	cmd.AddCommand(c.migrationsListCmd(), c.migrationsGetCmd(), c.migrationsCancelCmd())
	return cmd
}

func (c *cli) migrationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <plan-id>",
		Short: "List a plan's migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := c.client.Migrations.List(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			migrations, err := collect(cmd, page)
			if err != nil {
				return err
			}
			return c.printMigrations(cmd, migrations...)
		},
	}
}

func (c *cli) migrationsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <plan-id> <migration-id>",
		Short: "Show one migration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.client.Migrations.Fetch(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return c.printMigrations(cmd, *m)
		},
	}
}

func (c *cli) migrationsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <plan-id> <migration-id>",
		Short: "Cancel a migration that has not completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.client.Migrations.Cancel(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			c.logger.Info().Str("migration_id", m.ID).Str("status", string(m.Status)).Msg("migration canceled")
			return c.printMigrations(cmd, *m)
		},
	}
}

func effectiveLabel(t *orb.MigrationEffectiveTime) string {
	if t == nil {
		return "-"
	}
	switch t.Kind {
	case orb.EffectiveTimeEndOfTerm:
		return "end of term"
	case orb.EffectiveTimeDate:
		return t.Date.Format(time.DateOnly)
	case orb.EffectiveTimeDateTime:
		at := t.DateTime
		return date(&at)
	}
	return string(t.Raw)
}

func (c *cli) printMigrations(cmd *cobra.Command, migrations ...orb.Migration) error {
	if c.output == "json" {
		return printJSON(cmd.OutOrStdout(), migrations)
	}
	t := newTable(cmd.OutOrStdout(), "ID", "FROM", "TO", "STATUS", "EFFECTIVE")
	for _, m := range migrations {
		t.row(m.ID, m.CurrentPlanID, m.PlanID, statusLabel(string(m.Status)), effectiveLabel(m.EffectiveTime))
	}
	return t.flush()
}
