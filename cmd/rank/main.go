package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"featrank/adapters/explain"
	"featrank/adapters/postgres"
	"featrank/adapters/regressors"
	"featrank/adapters/tabular"
	"featrank/app"
	"featrank/domain/registry"
	"featrank/internal/config"
	"featrank/internal/report"
	"featrank/internal/rng"
	"featrank/internal/stability"
	"featrank/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	dataPath := flag.String("data", "", "dataset file (xlsx or csv), overrides DATASET_PATH")
	xlsxOut := flag.String("xlsx", "", "write the report workbook to this path")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if cfg.Data.Path == "" {
		log.Fatal("no dataset: set DATASET_PATH or pass -data")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := tabular.NewDataReader(tabular.ReaderConfig{
		FilePath:  cfg.Data.Path,
		Target:    cfg.Data.Target,
		IDColumns: cfg.Data.IDColumns,
	}, nil)
	table, err := reader.Read()
	if err != nil {
		log.Fatalf("read dataset: %v", err)
	}

	reg, err := registry.New(table.Features)
	if err != nil {
		log.Fatalf("build registry: %v", err)
	}

	var repo ports.ResultsRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		repo = postgres.NewResultsRepository(db)
	}

	streams := rng.NewFactory(cfg.Stability.Seed)
	families := []ports.ModelPort{
		regressors.NewForestPort(regressors.ForestConfig{}),
		regressors.NewLinearPort(),
		regressors.NewBoostPort(regressors.BoostConfig{}),
		regressors.NewKNNPort(5),
	}

	svc := app.NewPipelineService(app.PipelineConfig{
		DatasetName: cfg.Data.Path,
		Stability: stability.Config{
			Iterations:        cfg.Stability.Iterations,
			SubsampleFraction: cfg.Stability.SubsampleFraction,
			TrainFraction:     cfg.Stability.TrainFraction,
			MaxParallel:       cfg.Stability.MaxParallel,
		},
		Seed: streams.BaseSeed(),
	}, reg, families, explain.NewPermutationExplainer(0, streams), streams, repo, nil)

	result, err := svc.Run(ctx, table)
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}

	fmt.Print(report.Markdown(result))
	fmt.Print(report.ProfileMarkdown(table.Profile()))

	if *xlsxOut != "" {
		if err := report.WriteExcel(result, *xlsxOut); err != nil {
			log.Fatalf("write workbook: %v", err)
		}
		log.Printf("workbook written to %s", *xlsxOut)
	}
}
