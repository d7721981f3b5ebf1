package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/answerscope/answerscope/internal/utils"
	"github.com/answerscope/answerscope/pkg/audit"
	"github.com/answerscope/answerscope/pkg/scoring"
)

// auditCmd implements: answerscope audit
//
// Reads a crawl dump (JSON array of {url, html, status, headers}) and prints
// the scored audit report. With --save the run is also persisted.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Score crawled pages for AI answer-engine readability",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		domain, _ := cmd.Flags().GetString("domain")
		seeds, _ := cmd.Flags().GetString("seeds")
		renderParity, _ := cmd.Flags().GetFloat64("render-parity")
		agentsBlocked, _ := cmd.Flags().GetBool("agents-blocked")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		save, _ := cmd.Flags().GetBool("save")

		if domain == "" {
			return fmt.Errorf("please provide the audited domain (--domain)")
		}

		var raw []byte
		var err error
		if input == "" || input == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(input)
		}
		if err != nil {
			return fmt.Errorf("reading crawl input: %w", err)
		}

		var pages []audit.Page
		if err := json.Unmarshal(raw, &pages); err != nil {
			return fmt.Errorf("parsing crawl input: %w", err)
		}

		opts := audit.Options{
			Concurrency:         concurrency,
			AnswerAgentsBlocked: agentsBlocked,
			RenderParity:        renderParity,
		}
		if seeds != "" {
			for _, s := range strings.Split(seeds, ",") {
				if s = strings.TrimSpace(s); s != "" {
					opts.Seeds = append(opts.Seeds, s)
				}
			}
		}

		report, err := audit.Run(cmd.Context(), pages, scoring.DefaultCatalog(), opts)
		if err != nil {
			return err
		}

		if save {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			id, err := db.SaveAudit(cmd.Context(), domain, scoring.CatalogVersion, report.Pages, report.Result)
			if err != nil {
				return err
			}
			utils.Log.Infof("Saved audit %d for %s", id, domain)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringP("input", "i", "-", "Crawl dump JSON file (- for stdin)")
	auditCmd.Flags().StringP("domain", "d", "", "Domain being audited")
	auditCmd.Flags().String("seeds", "", "Comma-separated topic seed terms for the depth analyzer")
	auditCmd.Flags().Float64("render-parity", -1, "Measured render parity ratio (negative if unmeasured)")
	auditCmd.Flags().Bool("agents-blocked", false, "Set when robots rules block the primary answer-engine crawlers")
	auditCmd.Flags().Int("concurrency", 0, "Parallel extraction workers (0 for default)")
	auditCmd.Flags().Bool("save", false, "Persist the audit to the database")
}
