package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/manajir-storefront/config"
	"github.com/ikkim/manajir-storefront/internal/app/pricing"
	"github.com/ikkim/manajir-storefront/internal/app/repository"
	"github.com/ikkim/manajir-storefront/internal/app/service"
	"github.com/ikkim/manajir-storefront/internal/app/store"
	"github.com/ikkim/manajir-storefront/internal/db"
	"github.com/ikkim/manajir-storefront/pkg/redis"
	"github.com/ikkim/manajir-storefront/pkg/storefrontapi"
	"github.com/xuri/excelize/v2"
)

// cartRow is one line of the import sheet:
// product_id | size | color | quantity
type cartRow struct {
	Line      int
	ProductID int64
	Size      string
	Color     string
	Quantity  int
}

func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path> [session_id]")
	}

	filePath := os.Args[1]
	sessionID := uuid.NewString()
	if len(os.Args) > 2 {
		sessionID = os.Args[2]
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		log.Fatal("Session id must be a UUID:", err)
	}

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readCartRowsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Total cart lines to import: %d\n", len(rows))

	// 사용자 확인
	fmt.Printf("Import into session %s? (yes/no): ", sessionID)
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	// 스냅샷 저장소 연결
	if err := redis.Init(&cfg.Redis); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redis.Close()

	var snapshots repository.SnapshotRepository
	if cfg.Storage.Driver == "postgres" {
		if err := db.Initialize(&cfg.Database); err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
		snapshots = repository.NewGormSnapshotRepository(db.GetDB())
	} else {
		snapshots = repository.NewRedisSnapshotRepository(redis.GetClient(), cfg.Storage.TTL)
	}

	api, err := storefrontapi.NewClient(storefrontapi.Config{
		BaseURL: cfg.Storefront.BaseURL,
		Timeout: cfg.Storefront.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to create API client:", err)
	}

	calc, err := pricing.New(cfg.Checkout.FreeShippingThreshold, cfg.Checkout.FlatShippingFee, cfg.Checkout.TaxRate)
	if err != nil {
		log.Fatal("Invalid pricing configuration:", err)
	}

	catalog := service.NewCatalogService(api, nil)
	carts := service.NewCartService(store.NewRegistry(snapshots), catalog, calc)

	view, failed := importRows(context.Background(), carts, sessionID, rows)

	fmt.Println("Import completed!")
	fmt.Printf("  Imported lines: %d\n", len(rows)-failed)
	fmt.Printf("  Failed lines: %d\n", failed)
	fmt.Printf("  Cart items: %d, total: %s\n", view.ItemCount, view.Summary.Total.StringFixed(2))
}

// importRows adds each row to the session cart and returns the final
// cart with the number of rows that could not be added.
func importRows(ctx context.Context, carts service.CartService, sessionID string, rows []cartRow) (service.CartView, int) {
	failed := 0
	for _, row := range rows {
		if _, err := carts.AddItem(ctx, sessionID, row.ProductID, row.Size, row.Color, row.Quantity); err != nil {
			fmt.Printf("  line %d: product %d skipped: %v\n", row.Line, row.ProductID, err)
			failed++
		}
	}
	return carts.GetCart(ctx, sessionID), failed
}

func readCartRowsFromXLSX(filePath string) ([]cartRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	// 첫 번째 시트 이름 가져오기
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var result []cartRow
	skippedCount := 0

	// 첫 행은 헤더이므로 스킵
	for i, row := range rows[1:] {
		parsed, ok := parseCartRow(row)
		if !ok {
			skippedCount++
			continue
		}
		parsed.Line = i + 2
		result = append(result, parsed)
	}

	fmt.Printf("  Total rows: %d, skipped: %d\n", len(rows)-1, skippedCount)
	return result, nil
}

func parseCartRow(row []string) (cartRow, bool) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	productID, err := strconv.ParseInt(cell(0), 10, 64)
	if err != nil || productID <= 0 {
		return cartRow{}, false
	}

	// 수량이 비어 있으면 1개
	quantity := 1
	if raw := cell(3); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil {
			return cartRow{}, false
		}
		quantity = q
	}

	return cartRow{
		ProductID: productID,
		Size:      cell(1),
		Color:     cell(2),
		Quantity:  quantity,
	}, true
}
