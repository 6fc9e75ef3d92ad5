package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/db"
)

type PaymentStatus string

var (
	CompletedPaymentStatus PaymentStatus = "completed"
	UnderpaidPaymentStatus PaymentStatus = "underpaid"
	RefundedPaymentStatus  PaymentStatus = "refunded"
)

// Payment records one processor event applied to an order.
type Payment struct {
	ID            string        `json:"id"`
	OrderID       string        `json:"order_id"`
	PaymentMethod string        `json:"payment_method"`
	CheckoutID    string        `json:"checkout_id"`
	TransactionID string        `json:"transaction_id"`
	EventType     string        `json:"event_type"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

type PaymentStore interface {
	GetByOrderID(ctx context.Context, orderID string) ([]*Payment, error)
}

type PaymentModel struct {
	db *sql.DB
}

func NewPaymentModel(db *sql.DB) PaymentStore {
	return &PaymentModel{db}
}

func createPayment(ctx context.Context, q querier, payment *Payment) error {
	payment.ID = db.GenerateULID()

	query := `INSERT INTO payments(id, order_id, payment_method, checkout_id, transaction_id, event_type, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	args := []any{payment.ID, payment.OrderID, payment.PaymentMethod, payment.CheckoutID,
		payment.TransactionID, payment.EventType, payment.Status}

	return q.QueryRowContext(ctx, query, args...).Scan(&payment.CreatedAt)
}

func (m *PaymentModel) GetByOrderID(ctx context.Context, orderID string) ([]*Payment, error) {
	query := `SELECT id, order_id, payment_method, checkout_id, transaction_id, event_type, status, created_at
			  FROM payments WHERE order_id = $1 ORDER BY created_at ASC`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, query, orderID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	defer rows.Close()

	payments := []*Payment{}

	for rows.Next() {
		payment := &Payment{}

		err := rows.Scan(&payment.ID, &payment.OrderID, &payment.PaymentMethod, &payment.CheckoutID,
			&payment.TransactionID, &payment.EventType, &payment.Status, &payment.CreatedAt)

		if err != nil {
			return nil, err
		}

		payments = append(payments, payment)
	}

	return payments, rows.Err()
}
