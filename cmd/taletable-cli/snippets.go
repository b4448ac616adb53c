package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"taletable/internal/models"
)

func newSnippetCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snippet",
		Short: "Manage reusable context snippets of the active project",
	}

	var sn models.Snippet
	var textFile string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a snippet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireProject(); err != nil {
				return err
			}
			if textFile != "" {
				data, err := os.ReadFile(textFile)
				if err != nil {
					return fmt.Errorf("read %s: %w", textFile, err)
				}
				sn.Text = string(data)
			}
			sn.ProjectKey = c.rt.Store.Project()
			created, err := c.rt.Db.Snippets.CreateSnippet(&sn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", created.ID)
			return nil
		},
	}
	add.Flags().StringVar(&sn.Category, "category", "", "Snippet category, e.g. character")
	add.Flags().StringVar(&sn.Name, "name", "", "Snippet name")
	add.Flags().StringVar(&sn.Text, "text", "", "Snippet text")
	add.Flags().StringVar(&textFile, "text-file", "", "Read the snippet text from a file")
	add.Flags().StringVar(&sn.ModelID, "model", "", "Model to use for turns that include this snippet")
	add.Flags().StringSliceVar(&sn.ReferenceTags, "ref-tag", nil, "Pull records with this tag into turns that include this snippet")

	list := &cobra.Command{
		Use:   "list",
		Short: "List snippets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireProject(); err != nil {
				return err
			}
			items, err := c.rt.Db.Snippets.ListSnippets(c.rt.Store.Project())
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", it.ID, it.Label())
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snippet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid snippet id %q", args[0])
			}
			return c.rt.Db.Snippets.DeleteSnippet(uint(id))
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}
