package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrForbidden          = errors.New("not allowed to access this resource")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyFavorite    = errors.New("service already in favorites")
	ErrNotFavorite        = errors.New("service not in favorites")
	ErrOrderAlreadyFinal  = errors.New("order already completed or failed")
	ErrBadSignature       = errors.New("callback signature mismatch")
	ErrBadExtraData       = errors.New("correlation data is malformed")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid transaction context")
)
