package booking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/staynest/service-booking/internal/common/domain"
)

// MaxNights caps a single stay.
const MaxNights = 365

// MaxTotalPrice is the largest total the bookings.total_price column can hold.
var MaxTotalPrice = decimal.RequireFromString("99999999.99")

// ValidateDateOrder requires checkOut to fall strictly after checkIn.
func ValidateDateOrder(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return domain.NewValidationError("check_in and check_out are required")
	}
	if !DateOf(checkOut).After(DateOf(checkIn)) {
		return domain.NewValidationError("check_out must be after check_in")
	}
	return nil
}

// ValidateNotInPast rejects stays starting before today.
func ValidateNotInPast(stay StayPeriod, now time.Time) error {
	today := DateOf(now)
	if stay.CheckIn().Before(today) {
		return domain.NewValidationError("check_in cannot be in the past")
	}
	if stay.CheckOut().Before(today) {
		return domain.NewValidationError("check_out cannot be in the past")
	}
	return nil
}

// ValidateStayLength rejects stays longer than MaxNights.
func ValidateStayLength(stay StayPeriod) error {
	if stay.Nights() > MaxNights {
		return domain.NewValidationError(fmt.Sprintf("stay cannot exceed %d nights", MaxNights))
	}
	return nil
}

// ValidateTotalPrice rejects totals that do not fit the stored precision.
func ValidateTotalPrice(total decimal.Decimal) error {
	if total.GreaterThan(MaxTotalPrice) {
		return domain.NewValidationError("total price exceeds the maximum allowed amount")
	}
	return nil
}

// ValidateStayers requires a positive party size within capacity.
func ValidateStayers(stayers, maxStayers int) error {
	if stayers <= 0 {
		return domain.NewValidationError("stayers must be a positive number")
	}
	if stayers > maxStayers {
		return domain.NewValidationError(fmt.Sprintf("listing accommodates at most %d stayers", maxStayers))
	}
	return nil
}

// ValidateRequest runs the checks that need no listing data.
func ValidateRequest(stay StayPeriod, stayers int, now time.Time) error {
	if err := ValidateNotInPast(stay, now); err != nil {
		return err
	}
	if err := ValidateStayLength(stay); err != nil {
		return err
	}
	if stayers <= 0 {
		return domain.NewValidationError("stayers must be a positive number")
	}
	return nil
}
