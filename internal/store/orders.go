package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/safar/go-shop-api/internal/database"
	"github.com/safar/go-shop-api/internal/inventory"
	"github.com/safar/go-shop-api/internal/models"
	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	UserID int64
	Items  []OrderItemRequest
}

type OrderItemRequest struct {
	ProductID int64
	Quantity  int
}

func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%s", uuid.NewString())
}

// PlaceOrder converts a requested item list into a persisted order with
// snapshot prices and matching stock decrements, all inside one serializable
// transaction. Any failure rolls the whole placement back; concurrent
// placements on the same product serialize on the row lock taken at lookup.
func PlaceOrder(ctx context.Context, db *sql.DB, req PlaceOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, database.ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %d", database.ErrInvalidQuantity, item.ProductID)
		}
	}

	var order *models.Order

	err := database.WithRetry(ctx, db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)",
			req.UserID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check user exists: %w", err)
		}
		if !exists {
			return database.ErrUserNotFound
		}

		var totalAmount decimal.Decimal
		productPrices := make(map[int64]decimal.Decimal)

		for _, item := range req.Items {
			var productID int64
			var price decimal.Decimal
			var stockQuantity int

			err := tx.QueryRowContext(ctx,
				`SELECT id, price, stock_quantity
				 FROM products
				 WHERE id = $1
				 FOR UPDATE NOWAIT`,
				item.ProductID).Scan(&productID, &price, &stockQuantity)
			if err != nil {
				if err == sql.ErrNoRows {
					return fmt.Errorf("%w: product %d", database.ErrProductNotFound, item.ProductID)
				}
				return fmt.Errorf("lock product %d: %w", item.ProductID, err)
			}

			if !inventory.Orderable(price) {
				return fmt.Errorf("%w: product %d is not orderable", database.ErrProductNotFound, item.ProductID)
			}

			if !inventory.CanFulfill(stockQuantity, item.Quantity) {
				return fmt.Errorf("%w: product %d", database.ErrInsufficientStock, item.ProductID)
			}

			productPrices[item.ProductID] = price
			totalAmount = totalAmount.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		orderNumber := generateOrderNumber()
		var orderID int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, order_number, status, total_amount, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, NOW(), NOW())
			 RETURNING id`,
			req.UserID, orderNumber, models.StatusPending, totalAmount).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range req.Items {
			unitPrice := productPrices[item.ProductID]
			subtotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

			_, err = tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal, created_at)
				 VALUES ($1, $2, $3, $4, $5, NOW())`,
				orderID, item.ProductID, item.Quantity, unitPrice, subtotal)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}

			// Second fence behind the row lock: the guarded decrement keeps
			// stock non-negative even if the lock strategy ever changes.
			result, err := tx.ExecContext(ctx,
				`UPDATE products
				 SET stock_quantity = stock_quantity - $1,
				     updated_at = NOW()
				 WHERE id = $2
				   AND stock_quantity >= $1`,
				item.Quantity, item.ProductID)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return fmt.Errorf("%w: product %d", database.ErrInsufficientStock, item.ProductID)
			}
		}

		order = &models.Order{ID: orderID}
		err = tx.QueryRowContext(ctx,
			`SELECT order_number, user_id, status, total_amount, created_at, updated_at
			 FROM orders WHERE id = $1`,
			orderID).Scan(
			&order.OrderNumber,
			&order.UserID,
			&order.Status,
			&order.TotalAmount,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("fetch created order: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrder fetches an order with its items. Soft-deleted orders are treated
// as absent; callers other than the owner need the admin flag.
func GetOrder(ctx context.Context, db *sql.DB, caller models.Caller, id int64) (*models.Order, error) {
	order := &models.Order{}

	query := `
		SELECT id, user_id, order_number, status, total_amount, created_at, updated_at
		FROM orders
		WHERE id = $1
		  AND deleted_at IS NULL`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.Status,
		&order.TotalAmount,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if !caller.CanView(order.UserID) {
		return nil, database.ErrForbidden
	}

	itemsQuery := `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal, created_at
		FROM order_items
		WHERE order_id = $1`

	rows, err := db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	order.Items = items

	return order, nil
}

// ListOrders returns a cursor page of order history, newest first, excluding
// soft-deleted rows. Admin callers see every order, others only their own.
func ListOrders(ctx context.Context, db *sql.DB, caller models.Caller, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT id, user_id, order_number, status, total_amount, created_at, updated_at
		FROM orders
		WHERE deleted_at IS NULL
		  AND (created_at, id) < ($1, $2)`
	args := []interface{}{cursorData.CreatedAt, cursorData.ID}

	if !caller.Admin {
		query += `
		  AND user_id = $3`
		args = append(args, caller.UserID)
	}

	query += fmt.Sprintf(`
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.OrderNumber,
			&order.Status,
			&order.TotalAmount,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// CancelOrder moves a pending order to canceled and soft-deletes it. Stock is
// not restored: canceled quantities are written off, and restocking stays a
// product-management action.
func CancelOrder(ctx context.Context, db *sql.DB, caller models.Caller, id int64) error {
	return database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		ownerID, status, err := lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}

		if !caller.CanCancel(ownerID) {
			return database.ErrForbidden
		}

		if !status.CanTransition(models.StatusCanceled) {
			return fmt.Errorf("%w: cannot cancel order in status %q", database.ErrInvalidTransition, status)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders
			 SET status = $1, deleted_at = NOW(), updated_at = NOW()
			 WHERE id = $2`,
			models.StatusCanceled, id)
		if err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}

		return nil
	})
}

// ApproveOrder moves a pending order to approved. The privilege check lives
// in the routing layer; only admin-gated routes reach this operation.
func ApproveOrder(ctx context.Context, db *sql.DB, id int64) error {
	return database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		_, status, err := lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}

		if !status.CanTransition(models.StatusApproved) {
			return fmt.Errorf("%w: cannot approve order in status %q", database.ErrInvalidTransition, status)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders
			 SET status = $1, updated_at = NOW()
			 WHERE id = $2`,
			models.StatusApproved, id)
		if err != nil {
			return fmt.Errorf("approve order: %w", err)
		}

		return nil
	})
}

// lockOrder locks an order row for a status transition. Soft-deleted rows
// are still visible here so a canceled order reports an invalid transition
// rather than vanishing.
func lockOrder(ctx context.Context, tx *sql.Tx, id int64) (int64, models.Status, error) {
	var ownerID int64
	var status models.Status

	err := tx.QueryRowContext(ctx,
		`SELECT user_id, status
		 FROM orders
		 WHERE id = $1
		 FOR UPDATE`,
		id).Scan(&ownerID, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", database.ErrOrderNotFound
		}
		return 0, "", fmt.Errorf("lock order: %w", err)
	}

	return ownerID, status, nil
}
