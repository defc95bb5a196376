package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/saldo/internal/buildinfo"
)

// globalFlags are shared by every command that opens a project.
type globalFlags struct {
	repo     string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "saldo",
		Short:   "Double-entry turnover and saldo for a chart of accounts",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.repo, "repo", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level, overrides saldo.yaml and SALDO_LOG_LEVEL")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountsCommand(g),
		newTurnoverCommand(g),
		newSaldoCommand(g),
		newOverviewCommand(g),
		newBookingsCommand(g),
		newBookCommand(g),
		newTagsCommand(g),
	)

	return rootCmd
}

// withProject opens the project named by --repo, runs fn and closes it.
func (g *globalFlags) withProject(cmd *cobra.Command, fn func(p *project) error) (err error) {
	root, err := filepath.Abs(g.repo)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	p, err := openProject(cmd.Context(), root, g.logLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(p)
}
