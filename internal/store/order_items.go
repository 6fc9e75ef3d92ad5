package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/db"
	"github.com/shopspring/decimal"
)

type OrderItemType string

var (
	LineOrderItem     OrderItemType = "line_item"
	CouponOrderItem   OrderItemType = "coupon"
	ShippingOrderItem OrderItemType = "shipping"
	TaxOrderItem      OrderItemType = "tax"
)

// OrderItem is one row of an order. Name carries the product name, coupon code,
// shipping method name or tax label depending on Type.
type OrderItem struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	Type        OrderItemType   `json:"type"`
	Name        string          `json:"name"`
	ProductID   string          `json:"product_id,omitempty"`
	Quantity    int             `json:"quantity,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Total       decimal.Decimal `json:"total"`
	TotalTax    decimal.Decimal `json:"total_tax"`
	RatePercent decimal.Decimal `json:"rate_percent"`
	CreatedAt   time.Time       `json:"created_at"`
}

type OrderItems []*OrderItem

func (items OrderItems) OfType(itemType OrderItemType) OrderItems {
	filtered := OrderItems{}

	for _, item := range items {
		if item.Type == itemType {
			filtered = append(filtered, item)
		}
	}

	return filtered
}

func createOrderItems(ctx context.Context, tx *sql.Tx, orderID string, items OrderItems) error {
	query := `INSERT INTO order_items(id, order_id, item_type, name, product_id, quantity, subtotal, total, total_tax, rate_percent)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	for _, item := range items {
		item.ID = db.GenerateULID()
		item.OrderID = orderID

		args := []any{item.ID, item.OrderID, item.Type, item.Name, item.ProductID, item.Quantity,
			item.Subtotal, item.Total, item.TotalTax, item.RatePercent}

		if err := tx.QueryRowContext(ctx, query, args...).Scan(&item.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert %s item: %w", item.Type, err)
		}
	}

	return nil
}

func (m *OrderModel) GetItems(ctx context.Context, orderID string) (OrderItems, error) {
	query := `SELECT id, order_id, item_type, name, product_id, quantity, subtotal, total, total_tax, rate_percent, created_at
			  FROM order_items
			  WHERE order_id = $1
			  ORDER BY id`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, query, orderID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	items := OrderItems{}

	for rows.Next() {
		item := &OrderItem{}

		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.Type,
			&item.Name,
			&item.ProductID,
			&item.Quantity,
			&item.Subtotal,
			&item.Total,
			&item.TotalTax,
			&item.RatePercent,
			&item.CreatedAt,
		)

		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, rows.Err()
}
