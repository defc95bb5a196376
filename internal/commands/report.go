package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTurnoverCommand(g *globalFlags) *cobra.Command {
	var sel selectorFlags

	cmd := &cobra.Command{
		Use:   "turnover <account>",
		Short: "Show the credit and debit turnover of an account",
		Long:  "Show the credit and debit turnover of an account. The account is given by code, or by tag when tagging is enabled.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withProject(cmd, func(p *project) error {
				ctx := cmd.Context()
				acct, err := p.account(ctx, args[0])
				if err != nil {
					return err
				}
				s, err := sel.selector(ctx, p)
				if err != nil {
					return err
				}

				res, err := p.engine().Balance(ctx, acct, s, sel.inclusive())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s, %s\n", acct, s)
				fmt.Fprintf(out, "Credit: %s\n", res.Turnover.Credit.StringFixed(2))
				fmt.Fprintf(out, "Debit:  %s\n", res.Turnover.Debit.StringFixed(2))
				fmt.Fprintf(out, "Saldo:  %s\n", res.Saldo.StringFixed(2))
				return nil
			})
		},
	}
	sel.register(cmd, true)
	return cmd
}

func newSaldoCommand(g *globalFlags) *cobra.Command {
	var sel selectorFlags

	cmd := &cobra.Command{
		Use:   "saldo <account>",
		Short: "Show the saldo of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withProject(cmd, func(p *project) error {
				ctx := cmd.Context()
				acct, err := p.account(ctx, args[0])
				if err != nil {
					return err
				}
				s, err := sel.selector(ctx, p)
				if err != nil {
					return err
				}

				saldo, err := p.engine().Saldo(ctx, acct, s, sel.inclusive())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", acct, saldo.StringFixed(2))
				return nil
			})
		},
	}
	sel.register(cmd, true)
	return cmd
}

func newOverviewCommand(g *globalFlags) *cobra.Command {
	var (
		sel      selectorFlags
		nonzero  bool
		grouping int64
	)

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show the saldo of every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withProject(cmd, func(p *project) error {
				ctx := cmd.Context()
				s, err := sel.selector(ctx, p)
				if err != nil {
					return err
				}

				list := p.accounts.All()
				if grouping != 0 {
					list = p.accounts.ByGroupingType(grouping)
				}
				lines, err := p.engine().Overview(ctx, list, s)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, l := range lines {
					if nonzero && l.Saldo.IsZero() {
						continue
					}
					fmt.Fprintln(out, l)
				}
				return nil
			})
		},
	}
	sel.register(cmd, false)
	cmd.Flags().BoolVar(&nonzero, "nonzero", false, "hide accounts with a zero saldo")
	cmd.Flags().Int64Var(&grouping, "grouping", 0, "only accounts of this grouping type ID")
	return cmd
}

func newBookingsCommand(g *globalFlags) *cobra.Command {
	var sel selectorFlags

	cmd := &cobra.Command{
		Use:   "bookings <account>",
		Short: "List the bookings of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withProject(cmd, func(p *project) error {
				ctx := cmd.Context()
				acct, err := p.account(ctx, args[0])
				if err != nil {
					return err
				}
				s, err := sel.selector(ctx, p)
				if err != nil {
					return err
				}

				list, err := p.engine().Bookings(ctx, acct, s, sel.inclusive())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, b := range list {
					fmt.Fprintf(out, "%5d  %s  %12s  %-6s %-6s %s\n",
						b.ID, b.ValueDate.Format(dateFormat), b.Amount.StringFixed(2),
						p.code(b.CreditAccountID), p.code(b.DebitAccountID), b.Title)
				}
				return nil
			})
		},
	}
	sel.register(cmd, true)
	return cmd
}

// code returns the account code for display, or the raw ID when the account is gone.
func (p *project) code(id int64) string {
	if a, ok := p.accounts.Get(id); ok {
		return a.Code
	}
	return fmt.Sprintf("#%d", id)
}
