package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ikkim/catalog-backend/config"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/app/service"
	"github.com/ikkim/catalog-backend/internal/db"
	"github.com/ikkim/catalog-backend/pkg/cache"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"github.com/ikkim/catalog-backend/pkg/redis"
	"github.com/xuri/excelize/v2"
)

func main() {
	filePath := flag.String("file", "", "catalog xlsx file (one row per variant)")
	assumeYes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	// 명령줄 인자 확인
	if *filePath == "" {
		log.Fatal("Usage: go run ./cmd/seed -file catalog.xlsx [-yes]")
	}

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", *filePath)
	f, err := excelize.OpenFile(*filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	rows, err := service.ReadCatalogSheet(f)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Total rows to import: %d\n", len(rows))

	// 사용자 확인
	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		confirm, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		confirm = strings.ToLower(strings.TrimSpace(confirm))
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	// DB 연결
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// 실행 중인 서버의 facet 캐시 무효화용
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			fmt.Printf("Redis unavailable, facet cache will expire by TTL: %v\n", err)
		} else {
			defer redis.Close()
		}
	}
	facetCache := cache.NewRedisCache(redis.GetClient(), "catalog")

	importer := service.NewCatalogImportService(repository.NewProductRepository(db.GetDB()), db.GetDB(), facetCache)
	result, err := importer.Import(context.Background(), rows)
	if err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Categories: %d\n", result.Categories)
	fmt.Printf("Products created: %d\n", result.Products)
	fmt.Printf("Variants created: %d\n", result.Variants)
	fmt.Printf("Products skipped (already exist): %d\n", result.Skipped)
}
