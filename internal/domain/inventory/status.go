package inventory

import (
	"strings"

	"github.com/stockflow/backend/internal/domain/shared"
)

// StockInStatus is the lifecycle state of a stock-in header
type StockInStatus string

const (
	StockInStatusPending   StockInStatus = "pending"
	StockInStatusCompleted StockInStatus = "completed"
	StockInStatusRejected  StockInStatus = "rejected"
)

// IsValid checks if the status is a valid StockInStatus
func (s StockInStatus) IsValid() bool {
	switch s {
	case StockInStatusPending, StockInStatusCompleted, StockInStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of StockInStatus
func (s StockInStatus) String() string { return string(s) }

// IsTerminal reports whether no transition leaves s
func (s StockInStatus) IsTerminal() bool {
	return s == StockInStatusCompleted || s == StockInStatusRejected
}

// CanTransitionTo checks if the status can transition to the target status
func (s StockInStatus) CanTransitionTo(target StockInStatus) bool {
	if s != StockInStatusPending {
		return false
	}
	return target == StockInStatusCompleted || target == StockInStatusRejected
}

// StockOutStatus is the lifecycle state of a stock-out header
type StockOutStatus string

const (
	StockOutStatusPending   StockOutStatus = "pending"
	StockOutStatusApproved  StockOutStatus = "approved"
	StockOutStatusCompleted StockOutStatus = "completed"
	StockOutStatusRejected  StockOutStatus = "rejected"
)

// IsValid checks if the status is a valid StockOutStatus
func (s StockOutStatus) IsValid() bool {
	switch s {
	case StockOutStatusPending, StockOutStatusApproved, StockOutStatusCompleted, StockOutStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of StockOutStatus
func (s StockOutStatus) String() string { return string(s) }

// IsTerminal reports whether no transition leaves s
func (s StockOutStatus) IsTerminal() bool {
	return s == StockOutStatusCompleted || s == StockOutStatusRejected
}

// CanTransitionTo checks if the status can transition to the target status.
// A stock-out reaches completed only through approved.
func (s StockOutStatus) CanTransitionTo(target StockOutStatus) bool {
	switch s {
	case StockOutStatusPending:
		return target == StockOutStatusApproved || target == StockOutStatusRejected
	case StockOutStatusApproved:
		return target == StockOutStatusCompleted || target == StockOutStatusRejected
	}
	return false
}

// Action is a workflow command applied to a header
type Action string

const (
	ActionApprove  Action = "approve"
	ActionComplete Action = "complete"
	ActionReject   Action = "reject"
)

// ParseAction parses a workflow action name
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionApprove, ActionComplete, ActionReject:
		return a, nil
	}
	return "", shared.NewValidationError("action", "action must be one of approve, complete, reject")
}

// HeaderKind distinguishes the two transaction header types
type HeaderKind string

const (
	HeaderStockIn  HeaderKind = "stock_in"
	HeaderStockOut HeaderKind = "stock_out"
)
