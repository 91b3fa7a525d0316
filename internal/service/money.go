package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// maxMoney is the first amount a NUMERIC(12,2) column cannot hold.
var maxMoney = decimal.New(1, 10)

// validateMoney checks that an optional amount fits the NUMERIC(12,2)
// columns for budgets and costs without rounding.
func validateMoney(field string, d *decimal.Decimal) error {
	if d == nil {
		return nil
	}
	switch {
	case d.IsNegative():
		return fmt.Errorf("%w: %s must not be negative", domain.ErrValidation, field)
	case !d.Equal(d.Round(2)):
		return fmt.Errorf("%w: %s must have at most two decimal places", domain.ErrValidation, field)
	case d.GreaterThanOrEqual(maxMoney):
		return fmt.Errorf("%w: %s must be less than %s", domain.ErrValidation, field, maxMoney)
	}
	return nil
}
