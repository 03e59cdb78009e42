package booking

import (
	"fmt"
	"time"

	"github.com/staynest/service-booking/internal/common/domain"
)

// DateLayout is the wire format for stay dates.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// StayPeriod is a half-open range of nights [checkIn, checkOut) at day precision.
type StayPeriod struct {
	checkIn  time.Time
	checkOut time.Time
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewStayPeriod builds a period, requiring checkOut to fall after checkIn.
func NewStayPeriod(checkIn, checkOut time.Time) (StayPeriod, error) {
	p := StayPeriod{checkIn: DateOf(checkIn), checkOut: DateOf(checkOut)}
	if err := ValidateDateOrder(p.checkIn, p.checkOut); err != nil {
		return StayPeriod{}, err
	}
	return p, nil
}

// ParseStayPeriod parses YYYY-MM-DD dates.
func ParseStayPeriod(checkIn, checkOut string) (StayPeriod, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return StayPeriod{}, domain.NewValidationError(fmt.Sprintf("invalid check_in date %q", checkIn))
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return StayPeriod{}, domain.NewValidationError(fmt.Sprintf("invalid check_out date %q", checkOut))
	}
	return NewStayPeriod(in, out)
}

// ReconstructStayPeriod rebuilds a stored period without validation.
func ReconstructStayPeriod(checkIn, checkOut time.Time) StayPeriod {
	return StayPeriod{checkIn: DateOf(checkIn), checkOut: DateOf(checkOut)}
}

func (p StayPeriod) CheckIn() time.Time  { return p.checkIn }
func (p StayPeriod) CheckOut() time.Time { return p.checkOut }

// Nights returns the number of nights in the stay.
func (p StayPeriod) Nights() int {
	return int(nightsBetween(p.checkIn, p.checkOut))
}

// nightsBetween counts calendar days via Unix seconds; time.Duration
// saturates after roughly 292 years.
func nightsBetween(checkIn, checkOut time.Time) int64 {
	return (DateOf(checkOut).Unix() - DateOf(checkIn).Unix()) / secondsPerDay
}

// Overlaps reports whether two stays share at least one night.
// A check-out on day X does not conflict with a check-in on day X.
func (p StayPeriod) Overlaps(other StayPeriod) bool {
	return p.checkIn.Before(other.checkOut) && other.checkIn.Before(p.checkOut)
}

func (p StayPeriod) String() string {
	return p.checkIn.Format(DateLayout) + "/" + p.checkOut.Format(DateLayout)
}
