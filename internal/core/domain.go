package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPaid   Status = "pago"
	StatusUnpaid Status = "a_pagar"
)

type (
	// Status marks a record as paid or still due.
	Status string

	// Date is a calendar day with no time component, anchored at UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Record is one expense line item: a sparse set of amount fields
	// attached to a property for a given day.
	Record struct {
		ID        int64
		UserID    string
		Property  string
		Date      Date
		Status    Status
		Fields    map[string]Money
		CreatedAt time.Time
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyProperty = errors.New("empty property name")
	ErrNoAmounts     = errors.New("at least one amount field must be set")
	ErrInvalidStatus = errors.New("invalid status")
	ErrMissingUser   = errors.New("missing user id")
)

// NormalizeStatus maps an absent status to "a_pagar". Applied once when a
// record is loaded or received, so downstream consumers never re-default.
func NormalizeStatus(s Status) Status {
	if s == "" {
		return StatusUnpaid
	}
	return s
}

func (s Status) Valid() bool {
	return s == StatusPaid || s == StatusUnpaid
}

// Label returns the pt-BR display label used in reports and exports.
func (s Status) Label() string {
	if s == StatusPaid {
		return "Pago"
	}
	return "À Pagar"
}

const dateLayout = "2006-01-02"

func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the ISO form used for storage and range comparisons.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// Display returns the pt-BR form used in report output.
func (d Date) Display() string {
	return d.Format("02/01/2006")
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(r.Property) == "" {
		return ErrEmptyProperty
	}
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if r.Status != "" && !r.Status.Valid() {
		return ErrInvalidStatus
	}
	// A record with no positive amount is meaningless.
	hasAmount := false
	for _, m := range r.Fields {
		if m.Cents < 0 {
			return ErrInvalidAmount
		}
		if m.Cents > 0 {
			hasAmount = true
		}
	}
	if !hasAmount {
		return ErrNoAmounts
	}
	return nil
}
