package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/go-shop-api/internal/database"
	"github.com/safar/go-shop-api/internal/inventory"
	"github.com/safar/go-shop-api/internal/models"
	"github.com/shopspring/decimal"
)

// productSortColumns is the closed set of columns the listing may sort by.
// Sort input is mapped through this table and never interpolated from the
// request.
var productSortColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price",
	"name":       "name",
}

type ListProductsOptions struct {
	Page     int
	PageSize int
	Sort     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type UpdateProductRequest struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
}

func CreateProduct(ctx context.Context, db *sql.DB, name, description string, price decimal.Decimal, stock int) (*models.Product, error) {
	if err := inventory.ValidateProductInput(price, stock); err != nil {
		return nil, err
	}

	product := &models.Product{}

	query := `
		INSERT INTO products (name, description, price, stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, name, description, price, stock_quantity, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, name, description, price, stock).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.StockQuantity,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, database.ErrDuplicateProduct
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, name, description, price, stock_quantity, created_at, updated_at
		FROM products
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.StockQuantity,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// UpdateProduct applies a partial update; unset fields keep their current
// value. Price and stock go through the shared inventory guards when present.
func UpdateProduct(ctx context.Context, db *sql.DB, id int64, req UpdateProductRequest) (*models.Product, error) {
	if req.Price != nil && !req.Price.IsPositive() {
		return nil, inventory.ErrNonPositivePrice
	}
	if req.Stock != nil && *req.Stock < 0 {
		return nil, inventory.ErrNegativeStock
	}

	product := &models.Product{}

	query := `
		UPDATE products
		SET name = COALESCE($1, name),
		    description = COALESCE($2, description),
		    price = COALESCE($3, price),
		    stock_quantity = COALESCE($4, stock_quantity),
		    updated_at = NOW()
		WHERE id = $5
		RETURNING id, name, description, price, stock_quantity, created_at, updated_at`

	var priceArg interface{}
	if req.Price != nil {
		priceArg = *req.Price
	}
	var stockArg interface{}
	if req.Stock != nil {
		stockArg = *req.Stock
	}

	err := db.QueryRowContext(ctx, query, req.Name, req.Description, priceArg, stockArg, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.StockQuantity,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, database.ErrDuplicateProduct
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// DeleteProduct physically removes a product row. Rows referenced by order
// items are protected by the foreign key and fail the delete.
func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func ListProducts(ctx context.Context, db *sql.DB, opts ListProductsOptions) (*OffsetPage, error) {
	sortColumn, ok := productSortColumns[opts.Sort]
	if !ok {
		sortColumn = "created_at"
	}

	where := "WHERE 1 = 1"
	args := []interface{}{}

	if opts.MinPrice != nil {
		args = append(args, *opts.MinPrice)
		where += fmt.Sprintf(" AND price >= $%d", len(args))
	}
	if opts.MaxPrice != nil {
		args = append(args, *opts.MaxPrice)
		where += fmt.Sprintf(" AND price <= $%d", len(args))
	}

	var total int64
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (opts.Page - 1) * opts.PageSize
	args = append(args, opts.PageSize, offset)

	query := fmt.Sprintf(`
		SELECT id, name, description, price, stock_quantity, created_at, updated_at
		FROM products
		%s
		ORDER BY %s DESC
		LIMIT $%d OFFSET $%d`, where, sortColumn, len(args)-1, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.StockQuantity,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOffsetPage(products, total, opts.Page, opts.PageSize), nil
}
