package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"draftsmith/pkg/diff"
	"draftsmith/pkg/plot"
	"draftsmith/pkg/schema"
	"draftsmith/pkg/story"
	"draftsmith/pkg/utils"
)

var parseCmd = &cobra.Command{
	Use:   "parse <summary.txt>",
	Short: "Parse a raw summary response and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		var cast []schema.CastMember
		if plotFile != "" {
			p, err := plot.File{Path: plotFile}.Generate()
			if err != nil {
				return err
			}
			cast = p.Cast
		}

		summary, err := story.ParseSummary(string(raw), cast)
		var fe *story.FormatError
		if errors.As(err, &fe) {
			return fmt.Errorf("%s: %w", args[0], fe)
		}
		if err != nil {
			return err
		}

		out, err := utils.PrettyJSON(summary)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <old/summary.json> <new/summary.json>",
	Short: "Show a word level diff between two parsed summaries",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldS, err := utils.Load[schema.Summary](args[0])
		if err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}
		newS, err := utils.Load[schema.Summary](args[1])
		if err != nil {
			return fmt.Errorf("load %s: %w", args[1], err)
		}

		d := diff.Summaries(oldS, newS)
		if !d.Changed() {
			fmt.Fprintln(cmd.OutOrStdout(), "summaries are identical")
			return nil
		}
		d.Print(cmd.OutOrStdout())
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of summary.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := schema.SummarySchemaJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}
