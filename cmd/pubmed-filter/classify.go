// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-filter/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <affiliation...>",
	Short: "Classify one affiliation as academic or non-academic",
	Long: `Classify normalizes an affiliation string the same way the filter does and
prints the category and the keyword that decided it. Use it to check how a
keyword file treats a specific affiliation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	kw, err := classify.LoadKeywords(viper.GetString("classifier.keywords_file"))
	if err != nil {
		return err
	}
	c := classify.New(kw)

	res := c.Classify(strings.Join(args, " "))
	category, keyword := classify.Academic, ""
	if res.NonAcademic {
		category, keyword = classify.NonAcademic, res.Keyword
	} else if k, ok := c.AcademicMatch(res.Normalized); ok {
		keyword = k
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "normalized: %s\n", res.Normalized)
	fmt.Fprintf(w, "category:   %s\n", category)
	if keyword != "" {
		fmt.Fprintf(w, "keyword:    %s\n", keyword)
	}
	return nil
}
