package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the total price of the stay.
	Calculate(nightlyRate decimal.Decimal, stay StayPeriod) decimal.Decimal
}

// NightlyPricingStrategy charges the nightly rate for every night of the stay.
type NightlyPricingStrategy struct{}

// NewNightlyPricingStrategy creates a new NightlyPricingStrategy.
func NewNightlyPricingStrategy() *NightlyPricingStrategy {
	return &NightlyPricingStrategy{}
}

// Calculate returns nightlyRate * nights rounded to two places.
func (s *NightlyPricingStrategy) Calculate(nightlyRate decimal.Decimal, stay StayPeriod) decimal.Decimal {
	return CalculatePrice(nightlyRate, stay.CheckIn(), stay.CheckOut())
}

// CalculatePrice returns nightlyRate multiplied by the whole nights between
// checkIn and checkOut. The caller guarantees checkOut is after checkIn.
func CalculatePrice(nightlyRate decimal.Decimal, checkIn, checkOut time.Time) decimal.Decimal {
	return nightlyRate.Mul(decimal.NewFromInt(nightsBetween(checkIn, checkOut))).Round(2)
}
