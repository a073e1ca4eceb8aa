// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-filter/pkg/types"
)

// bindFlags binds each flag name to its viper key so that flags override
// environment and config file values.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func setDefaults() {
	d := types.DefaultPipelineConfig()
	viper.SetDefault("log_format", "console")
	viper.SetDefault("retrieval.base_url", d.Retrieval.BaseURL)
	viper.SetDefault("retrieval.user_agent", d.Retrieval.UserAgent)
	viper.SetDefault("retrieval.tool", d.Retrieval.Tool)
	viper.SetDefault("retrieval.max_retries", d.Retrieval.MaxRetries)
	viper.SetDefault("retrieval.rate_limit", d.Retrieval.RateLimit)
}

// loadConfig assembles the run configuration from viper. Credentials from
// .secrets/ fill in when neither the config file nor the environment sets
// them.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()

	r := &cfg.Retrieval
	r.BaseURL = viper.GetString("retrieval.base_url")
	r.UserAgent = viper.GetString("retrieval.user_agent")
	r.Timeout = viper.GetDuration("retrieval.timeout")
	r.Tool = viper.GetString("retrieval.tool")
	r.MaxResults = viper.GetInt("retrieval.max_results")
	r.MaxRetries = viper.GetInt("retrieval.max_retries")
	r.RateLimit = viper.GetFloat64("retrieval.rate_limit")
	r.APIKey = viper.GetString("retrieval.api_key")
	if r.APIKey == "" {
		r.APIKey = loadedSecrets.APIKey
	}
	r.Email = viper.GetString("retrieval.email")
	if r.Email == "" {
		r.Email = loadedSecrets.Email
	}

	cfg.Parser.Strict = viper.GetBool("parser.strict")
	cfg.Classifier.KeywordsFile = viper.GetString("classifier.keywords_file")
	cfg.Report.Path = viper.GetString("report.path")
	cfg.Report.Format = types.ReportFormat(viper.GetString("report.format"))
	cfg.InputFile = viper.GetString("input_file")
	cfg.SaveXML = viper.GetString("save_xml")
	cfg.MetricsFile = viper.GetString("metrics_file")

	if err := cfg.Validate(); err != nil {
		return types.PipelineConfig{}, err
	}
	return cfg, nil
}
