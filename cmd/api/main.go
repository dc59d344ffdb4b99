package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"featrank/adapters/memory"
	"featrank/adapters/postgres"
	"featrank/internal/api"
	"featrank/internal/config"
	"featrank/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var repo ports.ResultsRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		repo = postgres.NewResultsRepository(db)
	} else {
		log.Println("DATABASE_URL not set, serving from empty in-memory store")
		repo = memory.NewResultsRepository()
	}

	srv := api.NewServer(repo, nil)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("results API listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
