package order

import (
	"fmt"

	"fastfood-be/internal/apperr"
)

var (
	ErrOrderNotFound     = fmt.Errorf("%w: order", apperr.ErrNotFound)
	ErrInvalidStatus     = fmt.Errorf("%w: invalid order status", apperr.ErrValidation)
	ErrInvalidTransition = fmt.Errorf("%w: status change not allowed", apperr.ErrInvalidTransition)
	ErrStaleStatus       = fmt.Errorf("%w: order status changed concurrently", apperr.ErrInvalidTransition)

	ErrEmptyItems   = fmt.Errorf("%w: order must contain at least one item", apperr.ErrValidation)
	ErrInvalidItem  = fmt.Errorf("%w: item needs a positive product id and quantity", apperr.ErrValidation)
	ErrInvalidTotal = fmt.Errorf("%w: total must be a positive decimal", apperr.ErrValidation)
	ErrMissingUser  = fmt.Errorf("%w: user id is required", apperr.ErrValidation)
)
