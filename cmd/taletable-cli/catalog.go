package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProjectsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects with a stored transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := c.rt.Chat.ListProjects()
			if err != nil {
				return err
			}
			active := c.rt.Store.Project()
			for _, k := range keys {
				marker := " "
				if k == active {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, k)
			}
			return nil
		},
	}
}

func newModelsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models known to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := c.rt.Models.ListModelGroups()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, g := range groups {
				fmt.Fprintln(out, g.ProviderName)
				for _, m := range g.Models {
					fmt.Fprintf(out, "  %-32s %s\n", m.Key, m.DisplayName)
				}
			}
			return nil
		},
	}
}

func newKeyCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage provider API keys in the OS keyring",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <provider> <api-key>",
			Short: "Store an API key",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.rt.Keys.StoreApiKey(args[0], []byte(args[1]))
			},
		},
		&cobra.Command{
			Use:   "delete <provider>",
			Short: "Remove an API key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.rt.Keys.DeleteApiKey(args[0])
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List providers with a stored key",
			RunE: func(cmd *cobra.Command, args []string) error {
				keys, err := c.rt.Keys.ListApiKeys()
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), k["provider"])
				}
				return nil
			},
		},
	)
	return cmd
}
