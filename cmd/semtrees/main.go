package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	_ "github.com/lib/pq"

	"github.com/Jincheol-Lim/SEMtrees/adapters/excel"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
	"github.com/Jincheol-Lim/SEMtrees/internal/config"
	"github.com/Jincheol-Lim/SEMtrees/internal/container"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "semtrees",
		Short: "Monte Carlo study of missing-data strategies for growth SEM trees",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newCellCmd(),
		newSummarizeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig layers .env, the optional YAML file and SEMTREES_* variables.
func loadConfig(configPath string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func newRunCmd() *cobra.Command {
	var configPath string
	var replications int
	var seed int64
	var workers int
	var output string
	var methods string
	var covariate string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full simulation study and write the result artifacts",
		Long: `Run the configured condition grid, replication by replication, and write
the replication-level result table plus the per-condition summary.

Example: semtrees run --replications 100 --seed 2024 --output results.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// Flags beat file and environment.
			if cmd.Flags().Changed("replications") {
				cfg.Study.Replications = replications
			}
			if cmd.Flags().Changed("seed") {
				cfg.Study.Seed = seed
			}
			if cmd.Flags().Changed("workers") {
				cfg.Study.Workers = workers
			}
			if cmd.Flags().Changed("output") {
				cfg.Output.Path = output
			}
			if cmd.Flags().Changed("methods") {
				parsed, err := parseMethodList(methods)
				if err != nil {
					return err
				}
				cfg.Study.Methods = parsed
			}
			if cmd.Flags().Changed("covariate") {
				kind, err := panel.ParseCovariateKind(covariate)
				if err != nil {
					return err
				}
				cfg.Study.Covariate = kind
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runStudy(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file")
	cmd.Flags().IntVar(&replications, "replications", 100, "replications per condition")
	cmd.Flags().Int64Var(&seed, "seed", 2024, "global seed for deterministic streams")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent cells (0 = one per CPU)")
	cmd.Flags().StringVar(&output, "output", "semtrees_results.xlsx", "result table path (.xlsx or .csv)")
	cmd.Flags().StringVar(&methods, "methods", "", "comma-separated methods (default all five)")
	cmd.Flags().StringVar(&covariate, "covariate", "", "splitting covariate scale: continuous or binary")

	return cmd
}

func runStudy(ctx context.Context, cfg *config.Config) error {
	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer c.Shutdown(ctx)

	if cfg.Sink.DSN != "" {
		db, err := sqlx.Connect("postgres", cfg.Sink.DSN)
		if err != nil {
			return fmt.Errorf("results store connection failed: %w", err)
		}
		if err := c.InitWithDatabase(db); err != nil {
			return err
		}
		if err := c.Sink.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	result, err := c.Study.Run(ctx, cfg.Study)
	if err != nil {
		return err
	}

	if err := c.Writer.WriteResults(cfg.Output.Path, result.Table); err != nil {
		return err
	}
	summaries := c.Summary.Summarize(result.Table)
	summaryPath := excel.SummaryPath(cfg.Output.Path)
	if err := c.Writer.WriteSummary(summaryPath, summaries); err != nil {
		return err
	}

	if c.Sink != nil {
		if err := c.Sink.SaveResults(ctx, result.Manifest, result.Table); err != nil {
			return err
		}
	}

	fmt.Println(c.Summary.RenderTable(summaries))
	fmt.Printf("Study %s: %d rows (%d failures) in %.1fs\n",
		result.Manifest.StudyID, result.Table.Len(), result.Table.Failures(),
		float64(result.RuntimeMs)/1000.0)
	fmt.Printf("Results:  %s\nSummary:  %s\n", cfg.Output.Path, summaryPath)
	return nil
}

func newCellCmd() *cobra.Command {
	var configPath string
	var n int
	var location string
	var mechanism string
	var rate float64
	var replication int

	cmd := &cobra.Command{
		Use:   "cell",
		Short: "Reproduce a single replication cell and print its rows",
		Long: `Reproduce one (condition, replication) cell in isolation. The rows are
bit-identical to the same cell inside a full run with the same seed.

Example: semtrees cell --n 500 --location 1/3 --mechanism MAR --rate 0.10 --rep 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			loc, err := study.ParseLocation(location)
			if err != nil {
				return err
			}
			mech, err := study.ParseMechanism(mechanism)
			if err != nil {
				return err
			}
			cond := study.Condition{SampleSize: n, Location: loc, Mechanism: mech, Rate: rate}

			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			rows, err := c.Study.RunCell(cmd.Context(), cfg.Study, cond, replication)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file")
	cmd.Flags().IntVar(&n, "n", 500, "sample size")
	cmd.Flags().StringVar(&location, "location", "1/2", "cutpoint location: 1/2, 1/3 or 1/6")
	cmd.Flags().StringVar(&mechanism, "mechanism", "MCAR", "missingness mechanism: MCAR or MAR")
	cmd.Flags().Float64Var(&rate, "rate", 0.10, "missingness rate")
	cmd.Flags().IntVar(&replication, "rep", 1, "replication number (1-based)")

	return cmd
}

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [results-file]",
		Short: "Aggregate a previously written result table",
		Long: `Read a result table back from disk, aggregate it per condition and
method, write the summary artifact next to it and print the ranking.

Example: semtrees summarize semtrees_results.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			cfg := config.Default()
			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			table, err := c.Reader.ReadResults(path)
			if err != nil {
				return err
			}
			summaries := c.Summary.Summarize(table)

			summaryPath := excel.SummaryPath(path)
			if err := c.Writer.WriteSummary(summaryPath, summaries); err != nil {
				return err
			}

			fmt.Println(c.Summary.RenderTable(summaries))
			fmt.Printf("Summary: %s\n", summaryPath)
			return nil
		},
	}

	return cmd
}

func parseMethodList(v string) ([]study.Method, error) {
	parts := strings.Split(v, ",")
	out := make([]study.Method, 0, len(parts))
	for _, p := range parts {
		m, err := study.ParseMethod(p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
