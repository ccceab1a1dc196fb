package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
)

const orderColumns = `id, user_id, amount, currency, type, book_id, status, payment_id, created_at, updated_at`

// CreateOrder inserts a new order.
func (s *Store) CreateOrder(ctx context.Context, o *domain.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID,
		o.UserID,
		o.Amount,
		o.Currency,
		string(o.Type),
		nullString(o.BookID),
		string(o.Status),
		nullString(o.PaymentID),
		formatTime(o.CreatedAt),
		formatTime(o.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetOrder retrieves an order by ID.
// Returns store.ErrNotFound if the order does not exist.
func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var (
		o                    domain.Order
		orderType, status    string
		bookID, paymentID    sql.NullString
		createdAt, updatedAt string
	)

	err := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id).Scan(
		&o.ID, &o.UserID, &o.Amount, &o.Currency, &orderType, &bookID, &status, &paymentID,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	o.Type = domain.OrderType(orderType)
	o.Status = domain.OrderStatus(status)
	o.BookID = bookID.String
	o.PaymentID = paymentID.String
	return &o, nil
}

// UpdateOrderStatus records a verification outcome on an order.
// A paid order is final: the update is skipped and store.ErrConflict returned.
func (s *Store) UpdateOrderStatus(ctx context.Context, o *domain.Order) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, payment_id = ?, updated_at = ?
		WHERE id = ? AND status != ?`,
		string(o.Status),
		nullString(o.PaymentID),
		formatTime(o.UpdatedAt),
		o.ID,
		string(domain.OrderStatusPaid),
	)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		return store.ErrConflict.WithMessage("order already paid")
	}
	return nil
}
