package dbhelper

import (
	"errors"
	"fmt"

	"github.com/cafedesk/pos-backend/models"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotCompleted = errors.New("order is not completed")
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrTableNotFound     = errors.New("table not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailExists       = errors.New("email already registered")
	ErrInvalidPassword   = errors.New("incorrect password")
	ErrNothingToUpdate   = errors.New("nothing to update")
)

// IllegalTransitionError rejects a status change the adjacency table does
// not allow; distinct from ErrOrderNotFound.
type IllegalTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}
