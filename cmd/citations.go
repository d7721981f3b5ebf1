package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/answerscope/answerscope/internal/utils"
	"github.com/answerscope/answerscope/pkg/cache"
	"github.com/answerscope/answerscope/pkg/orchestrator"
	"github.com/answerscope/answerscope/pkg/providers"
)

// citationsCmd implements: answerscope citations
//
// Fetches brand citations for a domain from the configured search providers
// and appends them to the database. Optionally asks the full provider chain
// a brand question first.
var citationsCmd = &cobra.Command{
	Use:   "citations",
	Short: "Fetch and store brand citations from AI search providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		brand, _ := cmd.Flags().GetString("brand")
		domain, _ := cmd.Flags().GetString("domain")
		query, _ := cmd.Flags().GetString("query")
		ttl, _ := cmd.Flags().GetDuration("cache-ttl")

		if brand == "" || domain == "" {
			return fmt.Errorf("please provide both --brand and --domain")
		}

		cfg := providerConfig()
		chain := providers.BuildChain(cfg, nil)
		searchers := providers.SearchRunners(cfg, nil)
		if len(chain) == 0 && len(searchers) == 0 {
			return fmt.Errorf("no providers configured, add API keys to your config file")
		}

		o := orchestrator.New(chain, cache.New(ttl))

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if query != "" && len(chain) > 0 {
			answer, err := o.AnswerWithCitations(cmd.Context(), domain, query)
			if err != nil {
				utils.Log.Errorf("Answer query failed: %v", err)
			} else {
				fmt.Println(answer.Text)
				n, err := db.InsertCitations(cmd.Context(), answer.Citations)
				if err != nil {
					return err
				}
				utils.Log.Infof("Stored %d new citations from %s", n, answer.Provider)
			}
		}

		total := 0
		for _, p := range searchers {
			citations, err := o.FetchBrandCitations(cmd.Context(), p, brand, domain)
			if err != nil {
				utils.Log.Errorf("Brand fetch failed on %s: %v", p.Name(), err)
				continue
			}
			n, err := db.InsertCitations(cmd.Context(), citations)
			if err != nil {
				return err
			}
			utils.Log.Infof("%s: %d citations for %s (%d new)", p.Name(), len(citations), domain, n)
			total += n
		}
		utils.Log.Infof("Stored %d new brand citations for %s", total, domain)
		return nil
	},
}

// providerConfig assembles the provider settings from the config file.
// A provider with no API key stays disabled.
func providerConfig() providers.Config {
	fromViper := func(name string) providers.ProviderConfig {
		key := viper.GetString("providers." + name + ".key")
		return providers.ProviderConfig{
			Enabled:  key != "",
			APIKey:   key,
			Endpoint: viper.GetString("providers." + name + ".endpoint"),
		}
	}
	return providers.Config{
		Perplexity: fromViper("perplexity"),
		Bing:       fromViper("bing"),
		Brave:      fromViper("brave"),
		OpenAI:     fromViper("openai"),
	}
}

func init() {
	rootCmd.AddCommand(citationsCmd)
	citationsCmd.Flags().StringP("brand", "b", "", "Brand name to monitor")
	citationsCmd.Flags().StringP("domain", "d", "", "Domain the brand should be cited on")
	citationsCmd.Flags().StringP("query", "q", "", "Optional question to ask the full provider chain")
	citationsCmd.Flags().Duration("cache-ttl", 24*time.Hour, "Provider response cache TTL")
}
