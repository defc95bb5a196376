package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/saldo/internal/model"
)

func newBookCommand(g *globalFlags) *cobra.Command {
	var (
		date, amount  string
		credit, debit string
		title         string
	)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Record a booking from one account to another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withProject(cmd, func(p *project) error {
				ctx := cmd.Context()

				valueDate := model.Day(time.Now())
				if date != "" {
					d, err := parseDay(date)
					if err != nil {
						return err
					}
					valueDate = d
				}
				amt, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", amount, err)
				}
				creditAcct, err := p.account(ctx, credit)
				if err != nil {
					return err
				}
				debitAcct, err := p.account(ctx, debit)
				if err != nil {
					return err
				}

				b, err := p.bookings.append(ctx, model.Booking{
					ValueDate:       valueDate,
					Amount:          amt,
					CreditAccountID: creditAcct.ID,
					DebitAccountID:  debitAcct.ID,
					Title:           title,
				})
				if err != nil {
					return err
				}
				p.logger.Debug("booked",
					zap.Int64("id", b.ID),
					zap.String("credit", creditAcct.Code),
					zap.String("debit", debitAcct.Code),
					zap.String("amount", b.Amount.String()),
				)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Booked %d: %s %s from %s to %s\n",
					b.ID, b.ValueDate.Format(dateFormat), b.Amount.StringFixed(2), creditAcct, debitAcct)

				hash, err := p.commit(fmt.Sprintf("book: %d %s", b.ID, title))
				if err != nil {
					return err
				}
				if hash != "" {
					fmt.Fprintf(out, "Committed %s\n", hash)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "value date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, at most 2 decimal places (required)")
	cmd.Flags().StringVar(&credit, "credit", "", "credit account code or tag (required)")
	cmd.Flags().StringVar(&debit, "debit", "", "debit account code or tag (required)")
	cmd.Flags().StringVar(&title, "title", "", "booking text")
	for _, name := range []string{"amount", "credit", "debit"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
