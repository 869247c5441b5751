package service

import (
	"errors"
)

// ErrorCode is the stable machine-readable identifier surfaced to the
// request-handling layer for each rejected operation.
type ErrorCode string

const (
	CodeAccountNotFound     ErrorCode = "account_not_found"
	CodeDuplicateAccount    ErrorCode = "duplicate_account"
	CodeInvalidAmount       ErrorCode = "invalid_amount"
	CodeInsufficientBalance ErrorCode = "insufficient_balance"
	CodeOptionNotFound      ErrorCode = "option_not_found"
	CodeOptionInactive      ErrorCode = "option_inactive"
	CodeInvalidStake        ErrorCode = "invalid_stake"
	CodeInvalidOutcome      ErrorCode = "invalid_outcome"
	CodeBetNotFound         ErrorCode = "bet_not_found"
	CodeBetAlreadySettled   ErrorCode = "bet_already_settled"
	CodeEventNotFound       ErrorCode = "event_not_found"
	CodeStorageFailure      ErrorCode = "storage_failure"
)

// DomainError is a rejected business operation. It compares equal (via
// errors.Is) to the sentinel it was derived from, so callers can both
// branch on sentinels and read the code for their API responses.
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so wrapped and
// sentinel values compare equal.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

var (
	ErrAccountNotFound     = &DomainError{Code: CodeAccountNotFound, Message: "account not found"}
	ErrDuplicateAccount    = &DomainError{Code: CodeDuplicateAccount, Message: "account already exists"}
	ErrInvalidAmount       = &DomainError{Code: CodeInvalidAmount, Message: "amount must be positive"}
	ErrInsufficientBalance = &DomainError{Code: CodeInsufficientBalance, Message: "insufficient balance"}
	ErrOptionNotFound      = &DomainError{Code: CodeOptionNotFound, Message: "betting option not found"}
	ErrOptionInactive      = &DomainError{Code: CodeOptionInactive, Message: "betting option is closed for new bets"}
	ErrInvalidStake        = &DomainError{Code: CodeInvalidStake, Message: "stake must be a positive amount with at most two decimal places"}
	ErrInvalidOutcome      = &DomainError{Code: CodeInvalidOutcome, Message: "settlement outcome must be won, lost or cancelled"}
	ErrBetNotFound         = &DomainError{Code: CodeBetNotFound, Message: "bet not found"}
	ErrBetAlreadySettled   = &DomainError{Code: CodeBetAlreadySettled, Message: "bet has already been settled"}
	ErrEventNotFound       = &DomainError{Code: CodeEventNotFound, Message: "event not found"}
	ErrStorageFailure      = &DomainError{Code: CodeStorageFailure, Message: "storage failure"}
)

// ErrorCodeOf extracts the machine-readable code from err. Errors that
// are not domain errors are reported as storage failures; their detail is
// logged but never surfaced to the collaborator boundary.
func ErrorCodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeStorageFailure
}
