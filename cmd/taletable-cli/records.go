package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"taletable/internal/models"
)

func parseRecordID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record id %q", arg)
	}
	return uint(id), nil
}

func newRecordCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Manage reference-data records of the active project",
	}

	var rec models.Record
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireProject(); err != nil {
				return err
			}
			rec.ProjectKey = c.rt.Store.Project()
			created, err := c.rt.Db.Records.CreateRecord(&rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", created.ID)
			return nil
		},
	}
	add.Flags().StringVar(&rec.Category, "category", "", "Record category, e.g. character")
	add.Flags().StringVar(&rec.Name, "name", "", "Record name")
	add.Flags().StringVar(&rec.Description, "description", "", "Record description")
	add.Flags().StringSliceVar(&rec.Tags, "tag", nil, "Tags other selections can reference")
	add.Flags().StringSliceVar(&rec.ReferenceTags, "ref-tag", nil, "Pull records with this tag in when this record is selected")

	var tags []string
	list := &cobra.Command{
		Use:   "list",
		Short: "List records, optionally only those carrying any of --tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireProject(); err != nil {
				return err
			}
			var (
				items []*models.Record
				err   error
			)
			if len(tags) > 0 {
				items, err = c.rt.Db.Records.FindByTags(c.rt.Store.Project(), tags)
			} else {
				items, err = c.rt.Db.Records.ListRecords(c.rt.Store.Project())
			}
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s  [%s]\n", it.ID, it.Label(), strings.Join(it.Tags, ", "))
			}
			return nil
		},
	}
	list.Flags().StringSliceVar(&tags, "tag", nil, "Only records carrying any of these tags")

	history := &cobra.Command{
		Use:   "note <id> <entry>",
		Short: "Append a history entry to a record",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			_, err = c.rt.Db.Records.AddHistoryEntry(id, strings.Join(args[1:], " "))
			return err
		},
	}

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			return c.rt.Db.Records.DeleteRecord(id)
		},
	}

	cmd.AddCommand(add, list, history, remove)
	return cmd
}
