package repository

import (
	"context"
	"database/sql"
	"log"
	"testing"
	"time"

	"khavho-commerce/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(100) NOT NULL,
			description TEXT NOT NULL,
			price DECIMAL(10, 2),
			image_url VARCHAR(500) NOT NULL DEFAULT '',
			is_available BOOLEAN NOT NULL DEFAULT TRUE,
			stock INTEGER,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS floating_ads (
			id UUID PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			image_url VARCHAR(500) NOT NULL DEFAULT '',
			button_text VARCHAR(100) NOT NULL,
			button_url VARCHAR(500) NOT NULL DEFAULT '',
			duration INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func TestProperty_ProductRoundTripPreservesAttributes(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, category string, description string, price float64, stock int, available bool) bool {
			product := &domain.Product{
				ID:          uuid.New(),
				Name:        name,
				Category:    category,
				Description: description,
				Price:       &price,
				ImageURL:    "https://example.com/" + uuid.New().String() + ".jpg",
				IsAvailable: available,
				Stock:       &stock,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}

			if err := repo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}
			defer testDB.Exec("DELETE FROM products WHERE id = $1", product.ID)

			retrieved, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.Name != product.Name {
				t.Logf("FAIL: Name mismatch. Expected %s, got %s", product.Name, retrieved.Name)
				return false
			}
			if retrieved.Category != product.Category {
				t.Logf("FAIL: Category mismatch. Expected %s, got %s", product.Category, retrieved.Category)
				return false
			}
			if retrieved.Description != product.Description {
				t.Logf("FAIL: Description mismatch")
				return false
			}
			if retrieved.Price == nil {
				t.Logf("FAIL: Price lost on round trip")
				return false
			}
			// Compare prices with small tolerance for decimal rounding
			if *retrieved.Price < price-0.01 || *retrieved.Price > price+0.01 {
				t.Logf("FAIL: Price mismatch. Expected %f, got %f", price, *retrieved.Price)
				return false
			}
			if retrieved.Stock == nil || *retrieved.Stock != stock {
				t.Logf("FAIL: Stock mismatch")
				return false
			}
			if retrieved.IsAvailable != available {
				t.Logf("FAIL: Availability mismatch")
				return false
			}

			return true
		},
		gen.RegexMatch(`[A-Za-z ]{3,40}`),
		gen.RegexMatch(`[a-z]{3,20}`),
		gen.RegexMatch(`[A-Za-z0-9 ,.]{5,200}`),
		gen.Float64Range(0, 99999),
		gen.IntRange(0, 10000),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductPriceOnRequestRoundTrip(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        "Industrial compressor",
		Category:    "industrial",
		Description: "Quoted per installation",
		Price:       nil,
		IsAvailable: true,
		Stock:       nil,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	defer testDB.Exec("DELETE FROM products WHERE id = $1", product.ID)

	retrieved, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve product: %v", err)
	}

	if retrieved.Price != nil {
		t.Errorf("Expected nil price, got %v", *retrieved.Price)
	}
	if retrieved.Stock != nil {
		t.Errorf("Expected nil stock, got %v", *retrieved.Stock)
	}
}

func TestListAllPreservesInsertionOrder(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	if _, err := testDB.Exec("DELETE FROM products"); err != nil {
		t.Fatalf("Failed to clear products: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	price := 10.0
	ids := []uuid.UUID{}
	for i := 0; i < 5; i++ {
		product := &domain.Product{
			ID:          uuid.New(),
			Name:        "Product",
			Category:    "general",
			Description: "ordering test",
			Price:       &price,
			IsAvailable: true,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, product); err != nil {
			t.Fatalf("Failed to create product: %v", err)
		}
		ids = append(ids, product.ID)
	}
	defer testDB.Exec("DELETE FROM products")

	products, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}

	if len(products) != len(ids) {
		t.Fatalf("Expected %d products, got %d", len(ids), len(products))
	}
	for i, id := range ids {
		if products[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, products[i].ID)
		}
	}
}
