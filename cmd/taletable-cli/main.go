package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"taletable/internal/bootstrap"
	"taletable/internal/config"
	"taletable/internal/logging"
)

type rootSettings struct {
	ConfigPath string
	Project    string
	LogLevel   string
}

// cli holds what every subcommand needs once PersistentPreRunE has run.
type cli struct {
	settings rootSettings
	rt       *bootstrap.Runtime
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "taletable-cli",
		Short:         "Chat with LLMs over per-project transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.rt == nil {
				return nil
			}
			return c.rt.Close(context.WithoutCancel(cmd.Context()))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.settings.ConfigPath, "config", "", "Path to config.yaml")
	flags.StringVarP(&c.settings.Project, "project", "p", "", "Project key (defaults to the last active project)")
	flags.StringVar(&c.settings.LogLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(
		newChatCommand(c),
		newAskCommand(c),
		newHistoryCommand(c),
		newEditCommand(c),
		newDeleteCommand(c),
		newProjectsCommand(c),
		newModelsCommand(c),
		newKeyCommand(c),
		newSnippetCommand(c),
		newRecordCommand(c),
	)
	return root
}

func (c *cli) open(ctx context.Context) error {
	cfg, err := config.Load(c.settings.ConfigPath)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if c.settings.LogLevel != "" {
		level = c.settings.LogLevel
	}
	if err := logging.SetupWriter(os.Stderr, level, true); err != nil {
		return err
	}

	rt, err := bootstrap.New(cfg, bootstrap.Options{SQLLogger: logger.Silent})
	if err != nil {
		return err
	}
	c.rt = rt
	rt.Startup(ctx)

	if c.settings.Project != "" {
		return rt.Open(c.settings.Project)
	}
	return nil
}

// requireProject fails when no project is active.
func (c *cli) requireProject() error {
	if c.rt.Store.Project() == "" {
		return fmt.Errorf("no active project, pass --project")
	}
	return nil
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
