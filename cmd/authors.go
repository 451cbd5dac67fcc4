package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/suvichaar/quotepipe/internal/identify"
	"github.com/suvichaar/quotepipe/internal/table"
)

var authorsInput string

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "List the distinct authors in a table",
	RunE: func(_ *cobra.Command, _ []string) error {
		t, err := table.ReadFile(authorsInput)
		if err != nil {
			return err
		}
		if err := t.RequireColumns(identify.ColumnAuthor); err != nil {
			return err
		}
		idx, _ := t.Column(identify.ColumnAuthor)

		seen := make(map[string]struct{})
		var authors []string
		for _, row := range t.Rows {
			author := strings.TrimSpace(row[idx])
			if author == "" {
				continue
			}
			if _, ok := seen[author]; ok {
				continue
			}
			seen[author] = struct{}{}
			authors = append(authors, author)
		}

		collate.New(language.English, collate.IgnoreCase).SortStrings(authors)
		fmt.Fprintln(os.Stdout, strings.Join(authors, ", "))
		return nil
	},
}

func init() {
	authorsCmd.Flags().StringVar(&authorsInput, "input", "", "CSV or XLSX with an Author column")
	_ = authorsCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(authorsCmd)
}
