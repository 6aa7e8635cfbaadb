package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/services/report"
	"github.com/de-tools/form-atlas/pkg/store/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	dbPath   string
	format   string
	title    string
	entities []string
	outDir   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "form-atlas",
		Short: "Generate analysis reports from form data",
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "form-atlas.db", "Path to the SQLite database")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a report document",
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringVarP(&format, "format", "f", "xlsx",
		"Output format: "+strings.Join(report.SupportedFormats, ", "))
	generateCmd.Flags().StringVarP(&title, "title", "t", "", "Report title")
	generateCmd.Flags().StringSliceVarP(&entities, "entities", "e", []string{"all"},
		"Entity types to include, or 'all'")
	generateCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory for the generated file")

	entitiesCmd := &cobra.Command{
		Use:   "entities",
		Short: "List reportable entity types",
		RunE:  runEntities,
	}

	rootCmd.AddCommand(generateCmd, entitiesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	db, err := sqlite.NewDB(sqlite.Settings{DbPath: dbPath})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	fetcher, err := sqlite.NewFetcher(db)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	svc := report.NewService(fetcher)
	doc, err := svc.Generate(ctx, domain.ReportRequest{
		Title:    title,
		Format:   format,
		Entities: entities,
	})
	if err != nil {
		return err
	}

	path := filepath.Join(outDir, doc.Filename)
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("Report written to %s\n", path)
	return nil
}

func runEntities(_ *cobra.Command, _ []string) error {
	for _, name := range report.ConfiguredEntities() {
		cfg, ok := report.Config(name)
		if !ok {
			continue
		}
		fmt.Printf("%-20s columns: %s\n", name, strings.Join(cfg.DefaultColumns, ", "))
	}
	return nil
}
