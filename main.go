// news-lake-loader loads normalized news NDJSON files from object storage
// into a DuckDB warehouse exactly-once.
//
// Two modes:
//
//	news-lake-loader -config config.yaml            serve storage notifications
//	news-lake-loader -config config.yaml -backfill  sweep the bucket once
//
// Each run opens its own warehouse and storage handles and releases them on
// exit; nothing is shared across invocations.
package main

import (
	"context"
	"flag"
	"log"
	"os"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	backfill := flag.Bool("backfill", false, "run a one-shot backfill sweep instead of serving events")
	flag.Parse()

	config, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Starting %s", config.Service.Name)
	log.Printf("Warehouse: %s", config.Warehouse.Path)
	log.Printf("Bucket: s3://%s/%s", config.Storage.Bucket, config.Storage.Prefix)

	warehouse, err := NewWarehouse(config)
	if err != nil {
		log.Fatalf("Failed to initialize warehouse: %v", err)
	}
	defer warehouse.Close()

	loader := NewLoader(warehouse)

	if *backfill {
		store, err := NewObjectStore(&config.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}

		summary, err := RunBackfill(context.Background(), store, loader, config.Storage.Prefix)
		if err != nil {
			log.Fatalf("Backfill failed: %v", err)
		}
		if summary.Failed() {
			warehouse.Close()
			os.Exit(1)
		}
		return
	}

	server := NewEventServer(loader, loader, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Event server failed: %v", err)
	}
}
