package valueobjects

import (
	"fmt"
	"strconv"
)

// Amount is a decimal money value carried as its canonical string form.
// Amounts are stored and transported as strings so no precision is lost
// between the database, the wire and merchant callbacks.
type Amount struct {
	value string
}

// NewAmount validates raw as a positive decimal and returns it as an Amount.
func NewAmount(raw string) (Amount, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if f <= 0 {
		return Amount{}, fmt.Errorf("amount must be positive, got %q", raw)
	}
	return Amount{value: raw}, nil
}

// ReconstructAmount restores an Amount from persistence without validation.
func ReconstructAmount(raw string) Amount {
	return Amount{value: raw}
}

func (a Amount) String() string {
	return a.value
}

func (a Amount) IsZero() bool {
	return a.value == ""
}
