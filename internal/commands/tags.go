package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/saldo/internal/config"
)

var errTaggingDisabled = errors.New("tagging is disabled in " + config.FileName)

func newTagsCommand(g *globalFlags) *cobra.Command {
	tagsCmd := &cobra.Command{
		Use:   "tags",
		Short: "Account tag operations",
	}
	tagsCmd.AddCommand(
		newTagsListCommand(g),
		newTagsFindCommand(g),
		newTagsChangeCommand(g, "add", "Tag an account"),
		newTagsChangeCommand(g, "remove", "Remove tags from an account"),
	)
	return tagsCmd
}

func newTagsListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the default tags and every tag in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withProject(cmd, func(p *project) error {
				tagging, ok := p.accounts.Tagging()
				if !ok {
					return errTaggingDisabled
				}
				collection, err := tagging.TagCollection(cmd.Context())
				if err != nil {
					return err
				}
				for _, t := range collection {
					fmt.Fprintln(cmd.OutOrStdout(), t)
				}
				return nil
			})
		},
	}
}

func newTagsFindCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "find <tag>",
		Short: "Show the account carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withProject(cmd, func(p *project) error {
				tagging, ok := p.accounts.Tagging()
				if !ok {
					return errTaggingDisabled
				}
				acct, found, err := tagging.FindByTag(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("no account tagged %s", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), acct)
				return nil
			})
		},
	}
}

// newTagsChangeCommand builds "tags add" and "tags remove".
func newTagsChangeCommand(g *globalFlags, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <code> <tag>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withProject(cmd, func(p *project) error {
				if p.tags == nil {
					return errTaggingDisabled
				}
				ctx := cmd.Context()
				acct, err := p.accounts.MustGetByCode(args[0])
				if err != nil {
					return err
				}

				if verb == "add" {
					err = p.tags.Tag(ctx, acct.ID, args[1:]...)
				} else {
					err = p.tags.Untag(ctx, acct.ID, args[1:]...)
				}
				if err != nil {
					return err
				}
				if err := p.saveTags(); err != nil {
					return err
				}

				current, err := p.tags.TagsOf(ctx, acct.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: %s\n", acct, strings.Join(current, ", "))

				_, err = p.commit(fmt.Sprintf("tags: %s %s %s", verb, acct.Code, strings.Join(args[1:], " ")))
				return err
			})
		},
	}
}
