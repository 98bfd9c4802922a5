package order

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"kitchenpos/internal/pkg/errs"
)

const (
	numberPrefix = "ORD"
	dayLayout    = "20060102"

	// MaxDailySequence is the largest counter that fits the 4-digit suffix.
	MaxDailySequence = 9999
)

var numberPattern = regexp.MustCompile(`^ORD(\d{8})(\d{4})$`)

// Number is the externally visible order identifier, e.g. ORD202501150007.
// The format is a compatibility surface shared with printed tickets and the
// kitchen display, so the width of both parts is fixed.
type Number struct {
	day      string
	sequence int
}

// NewNumber builds the number for the sequence-th order of the day containing at.
func NewNumber(at time.Time, sequence int) (Number, error) {
	if sequence < 1 || sequence > MaxDailySequence {
		return Number{}, errs.NewValueIsOutOfRangeError("daily order sequence", sequence, 1, MaxDailySequence)
	}
	return Number{day: DayKey(at), sequence: sequence}, nil
}

// ParseNumber reads a persisted order number back.
func ParseNumber(raw string) (Number, error) {
	m := numberPattern.FindStringSubmatch(raw)
	if m == nil {
		return Number{}, errs.NewValueIsInvalidErrorWithCause("order number", fmt.Errorf("%q does not match ORD<YYYYMMDD><NNNN>", raw))
	}
	if _, err := time.Parse(dayLayout, m[1]); err != nil {
		return Number{}, errs.NewValueIsInvalidErrorWithCause("order number", err)
	}
	seq, _ := strconv.Atoi(m[2])
	if seq < 1 {
		return Number{}, errs.NewValueIsOutOfRangeError("daily order sequence", seq, 1, MaxDailySequence)
	}
	return Number{day: m[1], sequence: seq}, nil
}

// DayKey is the YYYYMMDD key of the counter that numbers orders created at t.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

func (n Number) String() string {
	if n.day == "" {
		return ""
	}
	return fmt.Sprintf("%s%s%04d", numberPrefix, n.day, n.sequence)
}

// Day returns the YYYYMMDD part.
func (n Number) Day() string {
	return n.day
}

// Sequence returns the per-day counter.
func (n Number) Sequence() int {
	return n.sequence
}

func (n Number) IsZero() bool {
	return n.day == ""
}

func (n Number) Validate() error {
	if n.IsZero() {
		return errs.NewValueIsRequiredError("order number")
	}
	return nil
}
