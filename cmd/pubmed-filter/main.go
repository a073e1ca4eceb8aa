// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-filter CLI. It searches
// PubMed, keeps the papers with at least one author affiliated with a
// company or other non-academic organization, and writes them to a report.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-filter/internal/logging"
	"github.com/pdiddy/pubmed-filter/internal/parse"
	"github.com/pdiddy/pubmed-filter/internal/pipeline"
	"github.com/pdiddy/pubmed-filter/internal/report"
	"github.com/pdiddy/pubmed-filter/internal/search"
	"github.com/pdiddy/pubmed-filter/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// logger is configured in PersistentPreRunE from --debug.
	logger = zerolog.Nop()

	// loadedSecrets holds NCBI credentials read from .secrets/ at startup.
	loadedSecrets secrets.NCBI
)

// rootCmd searches PubMed and writes the filtered report.
var rootCmd = &cobra.Command{
	Use:   "pubmed-filter [query...]",
	Short: "Find PubMed papers with non-academic authors",
	Long: `pubmed-filter searches PubMed for a query, fetches the matching records,
and keeps the papers where at least one author lists a company, biotech,
pharmaceutical or other non-academic affiliation. Matching papers are written
to a CSV report (or JSON/YAML with --format).

Multiple query words are joined with spaces. With --input, a previously saved
efetch XML payload is filtered instead and no query is needed.

A one-word query that is also a subcommand name (classify, keywords,
version) runs the subcommand. Put the query after -- to search for it:

  pubmed-filter -- keywords`,
	Args:          queryArgs,
	RunE:          runFilter,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if viper.GetBool("debug") {
			level = "debug"
		}
		logger = logging.New(logging.Config{Level: level, Format: viper.GetString("log_format")})

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if names := s.Names(); len(names) > 0 {
			logger.Debug().Strs("keys", names).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./pubmed-filter.yaml or ~/.config/pubmed-filter/pubmed-filter.yaml)")
	pf.BoolP("debug", "d", false, "enable debug logging")
	pf.String("keywords", "", "YAML keyword file replacing the built-in affiliation keywords")

	bindFlags(pf, map[string]string{
		"debug":    "debug",
		"keywords": "classifier.keywords_file",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubmed-filter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubmed-filter"))
		}
	}

	viper.SetEnvPrefix("PUBMED_FILTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

// describe maps each failure kind to a message for the terminal.
func describe(err error) string {
	var (
		retrievalErr *search.RetrievalError
		parseErr     *parse.ParseError
		writeErr     *report.WriteError
		invalid      validator.ValidationErrors
	)
	switch {
	case errors.Is(err, pipeline.ErrNoIdentifiers):
		return "no PubMed IDs found for the query"
	case errors.As(err, &retrievalErr):
		if retrievalErr.Err == nil && retrievalErr.StatusCode != 0 {
			return fmt.Sprintf("PubMed %s request failed with HTTP %d: %s",
				retrievalErr.Op, retrievalErr.StatusCode, strings.TrimSpace(retrievalErr.Body))
		}
		return fmt.Sprintf("PubMed %s request failed: %v", retrievalErr.Op, retrievalErr.Err)
	case errors.As(err, &parseErr):
		if errors.Is(err, parse.ErrMissingID) {
			return fmt.Sprintf("rejected record in PubMed response (strict mode): %v", parseErr)
		}
		return fmt.Sprintf("could not parse PubMed response: %v", parseErr)
	case errors.As(err, &writeErr):
		return fmt.Sprintf("could not write report %s: %v", writeErr.Path, writeErr.Err)
	case errors.As(err, &invalid):
		fields := make([]string, 0, len(invalid))
		for _, fe := range invalid {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		return "invalid configuration: " + strings.Join(fields, ", ")
	default:
		return err.Error()
	}
}
