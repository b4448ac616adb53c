package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"taletable/internal/events"
	"taletable/internal/models"
)

type chatSettings struct {
	Window     int
	SnippetIDs []uint
	RecordIDs  []uint
	Mode       string
	File       string
}

func (s *chatSettings) hasContext() bool {
	return len(s.SnippetIDs) > 0 || len(s.RecordIDs) > 0
}

func newChatCommand(c *cli) *cobra.Command {
	s := &chatSettings{}
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a message, or start an interactive session when no message is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireProject(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			text := strings.Join(args, " ")
			if s.File != "" {
				data, err := os.ReadFile(s.File)
				if err != nil {
					return fmt.Errorf("read %s: %w", s.File, err)
				}
				text = strings.TrimSpace(text + "\n\n" + string(data))
			}
			if text != "" || s.hasContext() {
				return c.sendTurn(cmd.Context(), out, text, s)
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprintf(out, "[%s] type a message, an empty line to quit\n", c.rt.Store.Project())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					return nil
				}
				if err := c.sendTurn(cmd.Context(), out, line, s); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				}
				// Snippets and records apply to the first turn only.
				s.SnippetIDs, s.RecordIDs = nil, nil
			}
		},
	}
	cmd.Flags().IntVarP(&s.Window, "window", "w", -1, "Exchanges of history to send (-1 uses the default)")
	cmd.Flags().UintSliceVarP(&s.SnippetIDs, "snippet", "s", nil, "Snippet ids to inject for this turn")
	cmd.Flags().UintSliceVarP(&s.RecordIDs, "record", "r", nil, "Record ids to inject for this turn")
	cmd.Flags().StringVar(&s.Mode, "mode", "", "Injection mode: formatted_user, dummy_response or system_role")
	cmd.Flags().StringVarP(&s.File, "file", "f", "", "Append the contents of a file to the message")
	return cmd
}

// sendTurn streams one turn to out. Ctrl-C cancels the turn.
func (c *cli) sendTurn(ctx context.Context, out io.Writer, text string, s *chatSettings) error {
	terminal := make(chan events.ChatEvent, 4)
	events.SetCustomEmitter(func(_ context.Context, _ string, evt events.ChatEvent) {
		switch evt.Type {
		case events.EventChunk:
			fmt.Fprint(out, evt.Text)
		case events.EventWarn, events.EventInfo:
			fmt.Fprintln(os.Stderr, "\n"+evt.Message)
		default:
			terminal <- evt
		}
	})
	defer events.SetCustomEmitter(nil)

	var err error
	if s.hasContext() {
		_, err = c.rt.Chat.StartTurnWithContext(text, s.Window, models.ContextSelection{
			SnippetIDs: s.SnippetIDs,
			RecordIDs:  s.RecordIDs,
			Mode:       models.InjectionMode(s.Mode),
		})
	} else {
		_, err = c.rt.Chat.StartTurn(text, s.Window, models.TransientBundle{Mode: models.InjectionMode(s.Mode)})
	}
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var evt events.ChatEvent
	select {
	case evt = <-terminal:
	case <-sigCtx.Done():
		if err := c.rt.Chat.CancelTurn(); err != nil {
			fmt.Fprintln(os.Stderr, "cancel:", err)
		}
		evt = <-terminal
	}
	fmt.Fprintln(out)

	switch evt.Type {
	case events.EventDone:
		if evt.Usage != nil {
			fmt.Fprintf(os.Stderr, "tokens: prompt=%d completion=%d total=%d\n",
				evt.Usage.PromptTokens, evt.Usage.CompletionTokens, evt.Usage.TotalTokens)
		}
		return nil
	case events.EventCancelled:
		return errors.New("turn cancelled")
	default:
		return fmt.Errorf("%s: %s", evt.ErrorKind, evt.Message)
	}
}

type askSettings struct {
	System string
	Model  string
}

func newAskCommand(c *cli) *cobra.Command {
	s := &askSettings{}
	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Run a single request that ignores and does not touch the transcript",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modelID := s.Model
			if modelID == "" && c.rt.Store.Project() == "" {
				modelID = c.rt.Config.DefaultModel
			}
			res, err := c.rt.Chat.GenerateOnce(s.System, strings.Join(args, " "), modelID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			fmt.Fprintf(cmd.ErrOrStderr(), "model: %s tokens: %d\n", res.ModelID, res.Usage.TotalTokens)
			return nil
		},
	}
	cmd.Flags().StringVar(&s.System, "system", "", "System instruction")
	cmd.Flags().StringVarP(&s.Model, "model", "m", "", "Model id (defaults to the project's edit or chat model)")
	return cmd
}
