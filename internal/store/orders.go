package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/db"
	"github.com/devphaseX/cqpay-api.git/internal/store/modelfilter"
	"github.com/shopspring/decimal"
)

type OrderStatus string

var (
	PendingOrderStatus    OrderStatus = "pending"
	ProcessingOrderStatus OrderStatus = "processing"
	OnHoldOrderStatus     OrderStatus = "on-hold"
	CancelledOrderStatus  OrderStatus = "cancelled"
	RefundedOrderStatus   OrderStatus = "refunded"
)

// BillingAddress is stored as a jsonb column on orders.
type BillingAddress struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"required,max=255"`
	Company   string `json:"company" validate:"max=255"`
	Address1  string `json:"address_1" validate:"max=255"`
	Address2  string `json:"address_2" validate:"max=255"`
	Postcode  string `json:"postcode" validate:"max=32"`
	City      string `json:"city" validate:"max=255"`
	Country   string `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	Phone     string `json:"phone" validate:"max=64"`
}

func (b BillingAddress) Value() (driver.Value, error) {
	return json.Marshal(b)
}

func (b *BillingAddress) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	case nil:
		*b = BillingAddress{}
		return nil
	default:
		return fmt.Errorf("unsupported billing address type %T", src)
	}
}

type Order struct {
	ID                string          `json:"id"`
	Reference         string          `json:"reference"`
	Currency          string          `json:"currency"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Status            OrderStatus     `json:"status"`
	Paid              bool            `json:"paid"`
	PaymentMethod     string          `json:"payment_method"`
	Billing           BillingAddress  `json:"billing"`
	CheckoutID        string          `json:"checkout_id,omitempty"`
	CheckoutURL       string          `json:"checkout_url,omitempty"`
	PaymentID         string          `json:"payment_id,omitempty"`
	CheckoutCreatedAt *time.Time      `json:"checkout_created_at,omitempty"`
	ReturnURL         string          `json:"return_url,omitempty"`
	CancelURL         string          `json:"cancel_url,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type OrderStore interface {
	Create(ctx context.Context, order *Order, items OrderItems) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByCheckoutID(ctx context.Context, checkoutID string) (*Order, error)
	GetItems(ctx context.Context, orderID string) (OrderItems, error)
	SetCheckout(ctx context.Context, orderID, checkoutID, checkoutURL string) error
	UpdatePaymentStatus(ctx context.Context, orderID string, status OrderStatus, paymentID string, paid bool) error
	ApplyPaymentEvent(ctx context.Context, orderID string, status OrderStatus, paid bool, payment *Payment) error
	GetAbandonedCheckouts(ctx context.Context, cutoff time.Time, limit int) ([]*Order, error)
	List(ctx context.Context, fq PaginateQueryFilter, filter modelfilter.GetOrdersFilter) ([]*Order, Metadata, error)
}

type OrderModel struct {
	db *sql.DB
}

func NewOrderModel(db *sql.DB) OrderStore {
	return &OrderModel{db}
}

const orderColumns = `id, reference, currency, total_amount, status, paid, payment_method, billing,
		COALESCE(checkout_id, ''), checkout_url, payment_id, checkout_created_at, return_url, cancel_url,
		created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner, extra ...any) (*Order, error) {
	order := &Order{}

	dest := append(extra,
		&order.ID,
		&order.Reference,
		&order.Currency,
		&order.TotalAmount,
		&order.Status,
		&order.Paid,
		&order.PaymentMethod,
		&order.Billing,
		&order.CheckoutID,
		&order.CheckoutURL,
		&order.PaymentID,
		&order.CheckoutCreatedAt,
		&order.ReturnURL,
		&order.CancelURL,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	return order, nil
}

func createOrder(ctx context.Context, tx *sql.Tx, order *Order) error {
	order.ID = db.GenerateULID()
	query := `INSERT INTO orders(id, reference, currency, total_amount, status, paid, payment_method, billing, return_url, cancel_url)
			 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)

	defer cancel()

	args := []any{order.ID, order.Reference, order.Currency, order.TotalAmount, order.Status, order.Paid,
		order.PaymentMethod, order.Billing, order.ReturnURL, order.CancelURL}

	err := tx.QueryRowContext(ctx, query, args...).Scan(&order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (m *OrderModel) Create(ctx context.Context, order *Order, items OrderItems) error {
	return withTrx(m.db, ctx, func(tx *sql.Tx) error {
		if err := createOrder(ctx, tx, order); err != nil {
			return err
		}

		if err := createOrderItems(ctx, tx, order.ID, items); err != nil {
			return err
		}

		return nil
	})
}

func (m *OrderModel) GetByID(ctx context.Context, id string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)

	defer cancel()

	order, err := scanOrder(m.db.QueryRowContext(ctx, query, id))

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound

		default:
			return nil, err
		}
	}

	return order, nil
}

func (m *OrderModel) GetByCheckoutID(ctx context.Context, checkoutID string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE checkout_id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)

	defer cancel()

	order, err := scanOrder(m.db.QueryRowContext(ctx, query, checkoutID))

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound

		default:
			return nil, err
		}
	}

	return order, nil
}

func (m *OrderModel) SetCheckout(ctx context.Context, orderID, checkoutID, checkoutURL string) error {
	query := `UPDATE orders
			  SET checkout_id = $1, checkout_url = $2, checkout_created_at = NOW(), updated_at = NOW()
			  WHERE id = $3`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := m.db.ExecContext(ctx, query, checkoutID, checkoutURL, orderID)

	if err != nil {
		return err
	}

	return expectRowsAffected(result)
}

func updatePaymentStatus(ctx context.Context, q querier, orderID string, status OrderStatus, paymentID string, paid bool) error {
	query := `UPDATE orders
			  SET status = $1, paid = $2, payment_id = COALESCE(NULLIF($3, ''), payment_id), updated_at = NOW()
			  WHERE id = $4`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := q.ExecContext(ctx, query, status, paid, paymentID, orderID)

	if err != nil {
		return err
	}

	return expectRowsAffected(result)
}

func (m *OrderModel) UpdatePaymentStatus(ctx context.Context, orderID string, status OrderStatus, paymentID string, paid bool) error {
	return updatePaymentStatus(ctx, m.db, orderID, status, paymentID, paid)
}

// ApplyPaymentEvent moves the order to status and records payment against it
// in one transaction, so a retried event never finds the order updated
// without its payment row.
func (m *OrderModel) ApplyPaymentEvent(ctx context.Context, orderID string, status OrderStatus, paid bool, payment *Payment) error {
	return withTrx(m.db, ctx, func(tx *sql.Tx) error {
		if err := updatePaymentStatus(ctx, tx, orderID, status, payment.TransactionID, paid); err != nil {
			return err
		}

		payment.OrderID = orderID

		if err := createPayment(ctx, tx, payment); err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		return nil
	})
}

func (m *OrderModel) GetAbandonedCheckouts(ctx context.Context, cutoff time.Time, limit int) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
			  WHERE status = $1 AND checkout_id IS NOT NULL AND checkout_created_at < $2
			  ORDER BY checkout_created_at ASC
			  LIMIT $3`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, query, PendingOrderStatus, cutoff, limit)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	orders := []*Order{}

	for rows.Next() {
		order, err := scanOrder(rows)

		if err != nil {
			return nil, err
		}

		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func (m *OrderModel) List(ctx context.Context, fq PaginateQueryFilter, filter modelfilter.GetOrdersFilter) ([]*Order, Metadata, error) {
	query := fmt.Sprintf(`SELECT count(*) OVER(), %s FROM orders
			  WHERE ($1 = '' OR status = $1) AND ($2 = '' OR reference = $2)
			  ORDER BY %s %s
			  LIMIT $3 OFFSET $4`, orderColumns, fq.SortColumn(), fq.SortDirection())

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, query, filter.Status, filter.Reference, fq.Limit(), fq.Offset())

	if err != nil {
		return nil, Metadata{}, fmt.Errorf("failed to query orders: %w", err)
	}

	defer rows.Close()

	var (
		orders       = []*Order{}
		totalRecords int
	)

	for rows.Next() {
		order, err := scanOrder(rows, &totalRecords)

		if err != nil {
			return nil, Metadata{}, err
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return orders, calculateMetadata(totalRecords, fq.Page, fq.PageSize), nil
}

func expectRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}
