package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/omsapp/oms-backend/config"
	"github.com/omsapp/oms-backend/internal/app/importer"
	"github.com/omsapp/oms-backend/internal/app/repository"
	"github.com/omsapp/oms-backend/internal/app/service"
	"github.com/omsapp/oms-backend/internal/db"
	"github.com/omsapp/oms-backend/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Initialize(logger.Config{Level: "warn", Format: "console", EnableColor: true})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	imp := importer.New(
		service.NewCustomerService(repository.NewCustomerRepository(db.GetDB())),
		service.NewProductService(repository.NewProductRepository(db.GetDB())),
	)

	fmt.Printf("Importing catalog from %s\n", filePath)
	report, err := imp.ImportFile(ctx, filePath)
	if err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Printf("Customers: %d created, %d skipped\n", report.CustomersCreated, report.CustomersSkipped)
	fmt.Printf("Products:  %d created, %d merged, %d skipped\n", report.ProductsCreated, report.ProductsMerged, report.ProductsSkipped)
	for _, rowErr := range report.Errors {
		fmt.Printf("  %s\n", rowErr.Error())
	}
}
