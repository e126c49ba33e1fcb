// ask runs one question through the full pipeline from the terminal:
// generate SQL, execute it and optionally summarize the result.
//
// Usage:
//
//	go run ./scripts/ask --nl "top 5 providers by total paid amount" [--debug] [--insight]
//	go run ./scripts/ask --schema
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/app"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/catalog"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/config"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/retry"
)

const maxPreviewColumns = 70

type options struct {
	configPath string
	question   string
	debug      bool
	insight    bool
	schema     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "ask",
		Short:         "Ask a question of the dataset: NL → SQL → rows → insights",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", config.DefaultPath, "Path to config.yaml")
	cmd.Flags().StringVar(&opts.question, "nl", "", "Natural-language question")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Show intent, routed model, entities and the final prompt")
	cmd.Flags().BoolVar(&opts.insight, "insight", false, "Also generate insights for the result")
	cmd.Flags().BoolVar(&opts.schema, "schema", false, "Print the schema overview and exit")
	return cmd
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.LoadFile(opts.configPath, "dev")
	if err != nil {
		return err
	}

	level := "warn"
	if opts.debug {
		level = "debug"
	}
	logger, err := logging.New(cfg.Env, level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if opts.schema {
		return renderSchema(catalog.Load(cfg.Paths.SchemaFile, logger))
	}

	question := strings.TrimSpace(opts.question)
	if question == "" {
		return fmt.Errorf("--nl is required")
	}

	pipeline, err := app.New(ctx, cfg, app.Options{DatabaseRetry: &retry.Config{MaxRetries: 0}}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Warn("Failed to close resources", zap.Error(err))
		}
	}()

	spinner, _ := pterm.DefaultSpinner.Start("Generating SQL")
	result, err := pipeline.Query.GenerateSQL(ctx, question)
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success("SQL generated")

	if opts.debug {
		renderDebug(result)
	}
	pterm.DefaultBox.WithTitle("SQL").WithPadding(1).Println(result.SQL)

	rows, err := pipeline.Query.ExecuteSQL(ctx, result.SQL)
	if err != nil {
		return err
	}
	if err := renderRows(rows); err != nil {
		return err
	}

	if opts.insight {
		items, err := pipeline.Query.GenerateInsights(ctx, result.SQL, question)
		if err != nil {
			return err
		}
		pterm.DefaultSection.Println("Insights")
		bullets := make([]pterm.BulletListItem, len(items))
		for i, item := range items {
			bullets[i] = pterm.BulletListItem{Level: 0, Text: item.Description}
		}
		return pterm.DefaultBulletList.WithItems(bullets).Render()
	}
	return nil
}

func renderDebug(result *models.GenerationResult) {
	details := []string{
		"Intent: " + result.Intent.String(),
		"Model:  " + result.Model,
	}
	if result.Entities != nil {
		details = append(details, "Tables: "+strings.Join(result.Entities.Tables, ", "))
	}
	pterm.DefaultBox.WithTitle("Routing").WithPadding(1).Println(strings.Join(details, "\n"))
	pterm.DefaultBox.WithTitle("Prompt").WithPadding(1).Println(result.Prompt)
}

func renderRows(result *models.QueryResult) error {
	if result.RowCount() == 0 {
		pterm.Info.Println("No results returned.")
		return nil
	}

	data := pterm.TableData{result.Columns}
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = ""
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		data = append(data, cells)
	}
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Info.Printf("%d rows\n", result.RowCount())
	return nil
}

func renderSchema(cat *catalog.Catalog) error {
	if err := cat.LoadError(); err != nil {
		return err
	}

	data := pterm.TableData{{"Table", "#cols", "First few columns"}}
	for _, table := range cat.Tables() {
		cols := cat.Columns(table)
		preview := strings.Join(cols, ", ")
		if len(preview) > maxPreviewColumns {
			preview = logging.TruncateString(preview, maxPreviewColumns)
		}
		data = append(data, []string{table, fmt.Sprint(len(cols)), preview})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
