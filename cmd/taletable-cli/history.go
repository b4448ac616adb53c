package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"taletable/internal/models"
	"taletable/internal/prompt"
)

type historySettings struct {
	Format string
	Render bool
}

func newHistoryCommand(c *cli) *cobra.Command {
	s := &historySettings{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the transcript of the active project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireProject(); err != nil {
				return err
			}
			turns := c.rt.Chat.GetTranscriptSnapshot()
			out := cmd.OutOrStdout()

			switch s.Format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(turns)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(turns); err != nil {
					return err
				}
				return enc.Close()
			case "text", "":
				return printTurns(out, turns, s.Render)
			default:
				return fmt.Errorf("unknown format %q", s.Format)
			}
		},
	}
	cmd.Flags().StringVar(&s.Format, "format", "text", "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&s.Render, "render", false, "Render model replies as markdown")
	return cmd
}

func printTurns(out io.Writer, turns []models.Turn, render bool) error {
	for _, t := range turns {
		fmt.Fprintf(out, "%s  %-5s  %s\n", t.ID, t.Role, t.Timestamp.Local().Format("2006-01-02 15:04"))
		display := prompt.FormatForDisplay(t.Text)
		text := indent(display)
		if render && t.Role == models.RoleModel {
			styled, err := glamour.Render(display, "dark")
			if err != nil {
				return err
			}
			text = strings.TrimRight(styled, "\n")
		}
		fmt.Fprintln(out, text)
		if t.UsageMetadata != nil {
			fmt.Fprintf(out, "    (%d tokens)\n", t.UsageMetadata.TotalTokens)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func indent(text string) string {
	return "    " + strings.ReplaceAll(text, "\n", "\n    ")
}

func newEditCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <turn-id> <text>",
		Short: "Replace the text of a turn",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireProject(); err != nil {
				return err
			}
			return c.rt.Chat.EditTurn(args[0], strings.Join(args[1:], " "))
		},
	}
}

func newDeleteCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <turn-id>",
		Short: "Remove a turn from the transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireProject(); err != nil {
				return err
			}
			return c.rt.Chat.DeleteTurn(args[0])
		},
	}
}
