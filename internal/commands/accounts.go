package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/saldo/internal/accounts"
	"github.com/cleared-dev/saldo/internal/model"
)

func newAccountsCommand(g *globalFlags) *cobra.Command {
	var (
		types    []string
		grouping int64
	)

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withProject(cmd, func(p *project) error {
				list := p.accounts.All()
				if len(types) > 0 {
					names := make([]model.AccountTypeName, len(types))
					for i, t := range types {
						names[i] = model.AccountTypeName(t)
					}
					list = p.accounts.ByType(names...)
				}
				if grouping != 0 {
					list = filterGrouping(list, grouping)
				}

				out := cmd.OutOrStdout()
				for _, a := range list {
					line := fmt.Sprintf("%-6s %-28s %-16s %s", a.Code, a.Title, a.Type.Name, side(a))
					if p.tags != nil {
						tagged, err := p.tags.TagsOf(cmd.Context(), a.ID)
						if err != nil {
							return err
						}
						if len(tagged) > 0 {
							line += "  [" + strings.Join(tagged, ", ") + "]"
						}
					}
					fmt.Fprintln(out, strings.TrimRight(line, " "))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&types, "type", nil, "only accounts of these types (e.g. costs,earnings)")
	cmd.Flags().Int64Var(&grouping, "grouping", 0, "only accounts of this grouping type ID")

	return cmd
}

func filterGrouping(list []model.Account, grouping int64) []model.Account {
	var out []model.Account
	for _, a := range list {
		if a.GroupingTypeID == grouping {
			out = append(out, a)
		}
	}
	return out
}

// side labels where an account reports and which side increases it.
func side(a model.Account) string {
	report := "balance"
	if accounts.IsProfitAccount(a) {
		report = "profit"
	}
	if accounts.IsAsset(a) {
		return report + "/debit"
	}
	return report + "/credit"
}
