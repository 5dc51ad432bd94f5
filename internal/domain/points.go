package domain

import "errors"

var (
	// ErrInsufficientBalance is returned when a debit exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAmount is returned for zero or negative point amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// PointsAccount holds a single member's balance. It never goes negative.
// Callers serialize access; the type itself is not safe for concurrent use.
type PointsAccount struct {
	balance int
}

// NewPointsAccount opens an account with an initial balance.
func NewPointsAccount(balance int) (*PointsAccount, error) {
	if balance < 0 {
		return nil, ErrInvalidAmount
	}
	return &PointsAccount{balance: balance}, nil
}

// Balance returns the current point balance.
func (a *PointsAccount) Balance() int {
	return a.balance
}

// Credit adds points to the balance.
func (a *PointsAccount) Credit(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	a.balance += amount
	return nil
}

// Debit removes points from the balance. The balance is left untouched when
// the request is rejected.
func (a *PointsAccount) Debit(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > a.balance {
		return ErrInsufficientBalance
	}
	a.balance -= amount
	return nil
}
