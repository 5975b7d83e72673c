package inventory

import (
	"fmt"

	"fastfood-be/internal/apperr"
)

var (
	ErrInventoryNotFound   = fmt.Errorf("%w: inventory item", apperr.ErrNotFound)
	ErrOrderNotFound       = fmt.Errorf("%w: order", apperr.ErrNotFound)
	ErrInvalidMovementType = fmt.Errorf("%w: movement type must be one of in, out, adjustment, order", apperr.ErrValidation)
	ErrInvalidIngredient   = fmt.Errorf("%w: ingredient id must be positive", apperr.ErrValidation)
)
