// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-filter/internal/classify"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List the active affiliation keywords",
	Long: `Keywords prints the non-academic and academic keyword lists in effect,
either the built-in defaults or the file given with --keywords. With --yaml
the output is a keyword file that can be edited and passed back in.`,
	Args: cobra.NoArgs,
	RunE: runKeywords,
}

func init() {
	keywordsCmd.Flags().Bool("yaml", false, "print as a keyword file")
	rootCmd.AddCommand(keywordsCmd)
}

func runKeywords(cmd *cobra.Command, args []string) error {
	kw, err := classify.LoadKeywords(viper.GetString("classifier.keywords_file"))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asYAML {
		entries := make(map[string]classify.Category, len(kw.NonAcademic)+len(kw.Academic))
		for _, k := range kw.NonAcademic {
			entries[k] = classify.NonAcademic
		}
		for _, k := range kw.Academic {
			entries[k] = classify.Academic
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{"keywords": entries}); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "%s (%d):\n", classify.NonAcademic, len(kw.NonAcademic))
	for _, k := range kw.NonAcademic {
		fmt.Fprintf(w, "  %s\n", k)
	}
	fmt.Fprintf(w, "%s (%d):\n", classify.Academic, len(kw.Academic))
	for _, k := range kw.Academic {
		fmt.Fprintf(w, "  %s\n", k)
	}
	return nil
}
