// examples-index builds and queries the validated example index used for
// few-shot retrieval.
//
// Usage:
//
//	go run ./scripts/examples-index split --seed docs/examples/seed.yaml --out docs/examples/validated
//	go run ./scripts/examples-index build --docs 'docs/examples/validated/ex*.yaml' --out vector_store/examples.db
//	go run ./scripts/examples-index search "top providers by paid amount" --tables claims -k 3
//
// Embedding provider and API keys come from config.yaml and the environment.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/config"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/retrieval"
)

var (
	configPath string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "examples-index",
		Short:         "Build and query the validated example index",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to config.yaml")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newSplitCmd(), newBuildCmd(), newSearchCmd())
	return root
}

func newSplitCmd() *cobra.Command {
	var seed, out string
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a seed file into one YAML document per example",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := retrieval.SplitSeed(seed, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d example documents to %s\n", len(paths), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "Seed file holding a YAML list of examples")
	cmd.Flags().StringVar(&out, "out", "docs/examples/validated", "Output directory")
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}

func newBuildCmd() *cobra.Command {
	var docs, out string
	var batchSize, concurrency int
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Embed example documents and write the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if docs == "" {
				docs = cfg.Paths.ExamplesGlob
			}
			if out == "" {
				out = cfg.Paths.IndexPath
			}

			examples, err := retrieval.LoadDocuments(docs)
			if err != nil {
				return err
			}

			embedder, err := llm.NewEmbedder(ctx, cfg.EmbedderConfig(), logger)
			if err != nil {
				return fmt.Errorf("create embedder: %w", err)
			}

			pool := llm.NewWorkerPool(llm.WorkerPoolConfig{MaxConcurrent: concurrency}, logger)
			count, err := retrieval.NewBuilder(embedder, pool, batchSize, logger).BuildFile(ctx, out, examples)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d examples into %s (%s)\n", count, out, embedder.GetModel())
			return nil
		},
	}
	cmd.Flags().StringVar(&docs, "docs", "", "Glob of example documents (default paths.examples_glob)")
	cmd.Flags().StringVar(&out, "out", "", "Index path (default paths.index_path)")
	cmd.Flags().IntVar(&batchSize, "batch-size", retrieval.DefaultBatchSize, "Documents per embedding request")
	cmd.Flags().IntVar(&concurrency, "concurrency", llm.DefaultWorkerPoolConfig().MaxConcurrent, "Concurrent embedding requests")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var tables string
	var k int
	cmd := &cobra.Command{
		Use:   "search <question>",
		Short: "Show the examples retrieved for a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			store, err := retrieval.OpenStore(ctx, cfg.Paths.IndexPath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			embedder, err := llm.NewEmbedder(ctx, cfg.EmbedderConfig(), logger)
			if err != nil {
				return fmt.Errorf("create embedder: %w", err)
			}

			retriever := retrieval.NewRetriever(embedder, store, cfg.Retrieval.FetchK, logger)
			examples, err := retriever.Retrieve(ctx, strings.Join(args, " "), splitList(tables), k)
			if err != nil {
				return err
			}

			if len(examples) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No examples share the given tables.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), retrieval.RenderExamples(examples))
			return nil
		},
	}
	cmd.Flags().StringVar(&tables, "tables", "", "Comma-separated tables the examples must share")
	cmd.Flags().IntVarP(&k, "k", "k", 3, "Number of examples to return")
	return cmd
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFile(configPath, "dev")
	if err != nil {
		return nil, nil, err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(cfg.Env, level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
