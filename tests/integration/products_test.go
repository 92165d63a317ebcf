package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/safar/go-shop-api/internal/database"
	"github.com/safar/go-shop-api/internal/inventory"
	"github.com/safar/go-shop-api/internal/models"
	"github.com/safar/go-shop-api/internal/store"
	"github.com/shopspring/decimal"
)

func TestCreateProductValidation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.CreateProduct(ctx, db, "Freebie", "Test", decimal.Zero, 5)
	if !errors.Is(err, inventory.ErrNonPositivePrice) {
		t.Errorf("Expected non-positive price error, got: %v", err)
	}

	_, err = store.CreateProduct(ctx, db, "Debt", "Test", decimal.NewFromInt(10), -1)
	if !errors.Is(err, inventory.ErrNegativeStock) {
		t.Errorf("Expected negative stock error, got: %v", err)
	}

	if _, err := store.CreateProduct(ctx, db, "Valid", "Test", decimal.NewFromInt(10), 0); err != nil {
		t.Errorf("Zero stock should be allowed, got: %v", err)
	}
}

func TestCreateProductDuplicateName(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	createTestProduct(t, db, "Unique", decimal.NewFromInt(10), 5)

	_, err := store.CreateProduct(ctx, db, "Unique", "Another", decimal.NewFromInt(20), 3)
	if !errors.Is(err, database.ErrDuplicateProduct) {
		t.Errorf("Expected duplicate product error, got: %v", err)
	}
}

func TestUpdateProductPartial(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	product := createTestProduct(t, db, "Mutable", decimal.NewFromInt(10), 5)

	newStock := 42
	updated, err := store.UpdateProduct(ctx, db, product.ID, store.UpdateProductRequest{Stock: &newStock})
	if err != nil {
		t.Fatalf("Update product: %v", err)
	}

	if updated.StockQuantity != 42 {
		t.Errorf("Expected stock 42, got %d", updated.StockQuantity)
	}
	if !updated.Price.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Price should be unchanged, got %s", updated.Price)
	}
	if updated.Name != "Mutable" {
		t.Errorf("Name should be unchanged, got %s", updated.Name)
	}

	badPrice := decimal.Zero
	if _, err := store.UpdateProduct(ctx, db, product.ID, store.UpdateProductRequest{Price: &badPrice}); !errors.Is(err, inventory.ErrNonPositivePrice) {
		t.Errorf("Expected non-positive price error, got: %v", err)
	}

	if _, err := store.UpdateProduct(ctx, db, 99999, store.UpdateProductRequest{Stock: &newStock}); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected product not found, got: %v", err)
	}
}

func TestDeleteProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	product := createTestProduct(t, db, "Removable", decimal.NewFromInt(10), 5)

	if err := store.DeleteProduct(ctx, db, product.ID); err != nil {
		t.Fatalf("Delete product: %v", err)
	}

	if _, err := store.GetProduct(ctx, db, product.ID); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected product not found after delete, got: %v", err)
	}

	if err := store.DeleteProduct(ctx, db, product.ID); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected product not found deleting twice, got: %v", err)
	}
}

func TestListProductsFilterAndSort(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	createTestProduct(t, db, "Cheap", decimal.NewFromInt(5), 10)
	createTestProduct(t, db, "Middle", decimal.NewFromInt(50), 10)
	createTestProduct(t, db, "Expensive", decimal.NewFromInt(500), 10)

	min := decimal.NewFromInt(10)
	max := decimal.NewFromInt(100)
	page, err := store.ListProducts(ctx, db, store.ListProductsOptions{
		Page:     1,
		PageSize: 20,
		MinPrice: &min,
		MaxPrice: &max,
	})
	if err != nil {
		t.Fatalf("List products: %v", err)
	}

	products := page.Items.([]models.Product)
	if len(products) != 1 {
		t.Fatalf("Expected 1 product in range, got %d", len(products))
	}
	if products[0].Name != "Middle" {
		t.Errorf("Expected Middle, got %s", products[0].Name)
	}
	if page.Total != 1 {
		t.Errorf("Expected total 1, got %d", page.Total)
	}

	byPrice, err := store.ListProducts(ctx, db, store.ListProductsOptions{
		Page:     1,
		PageSize: 20,
		Sort:     "price",
	})
	if err != nil {
		t.Fatalf("List products sorted: %v", err)
	}
	sorted := byPrice.Items.([]models.Product)
	if len(sorted) != 3 {
		t.Fatalf("Expected 3 products, got %d", len(sorted))
	}
	if sorted[0].Name != "Expensive" {
		t.Errorf("Expected Expensive first on price sort, got %s", sorted[0].Name)
	}

	// Unknown sort fields fall back to created_at instead of reaching the
	// query text.
	hostile, err := store.ListProducts(ctx, db, store.ListProductsOptions{
		Page:     1,
		PageSize: 20,
		Sort:     "price; DROP TABLE products--",
	})
	if err != nil {
		t.Fatalf("List products with hostile sort: %v", err)
	}
	if got := len(hostile.Items.([]models.Product)); got != 3 {
		t.Errorf("Expected 3 products after hostile sort input, got %d", got)
	}
}
