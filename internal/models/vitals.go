package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNotContinuous    = errors.New("attribute is not continuous")
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrUnknownSeverity  = errors.New("unknown severity class")
)

// Attribute selects one column of a vital-signs record.
type Attribute int

const (
	PressureQuality Attribute = iota
	Pulse
	Breathing
	Class
)

// ContinuousAttributes returns the splittable attributes in canonical order.
func ContinuousAttributes() []Attribute {
	return []Attribute{PressureQuality, Pulse, Breathing}
}

func (a Attribute) String() string {
	switch a {
	case PressureQuality:
		return "qPA"
	case Pulse:
		return "pulso"
	case Breathing:
		return "respiração"
	case Class:
		return "classe"
	default:
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
}

// Key is the stable English identifier used in config files.
func (a Attribute) Key() string {
	switch a {
	case PressureQuality:
		return "pressure_quality"
	case Pulse:
		return "pulse"
	case Breathing:
		return "breathing"
	case Class:
		return "class"
	default:
		return ""
	}
}

func (a Attribute) IsContinuous() bool {
	switch a {
	case PressureQuality, Pulse, Breathing:
		return true
	default:
		return false
	}
}

// ParseAttribute accepts either the dataset label or the config key.
// Input is NFC-normalised so a decomposed "respiração" still matches.
func ParseAttribute(s string) (Attribute, error) {
	name := strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
	for _, a := range []Attribute{PressureQuality, Pulse, Breathing, Class} {
		if name == strings.ToLower(a.String()) || name == a.Key() {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAttribute, s)
}

// SeverityClass is the label being predicted. Raw values match the
// integer codes used in the training files.
type SeverityClass int

const (
	SeverityOne SeverityClass = iota + 1
	SeverityTwo
	SeverityThree
	SeverityFour
)

const numSeverities = 4

// Severities returns every class in canonical order. Majority ties are
// broken in favour of the earliest entry.
func Severities() []SeverityClass {
	return []SeverityClass{SeverityOne, SeverityTwo, SeverityThree, SeverityFour}
}

func ParseSeverityClass(code int) (SeverityClass, error) {
	c := SeverityClass(code)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownSeverity, code)
	}
	return c, nil
}

func (c SeverityClass) Valid() bool {
	switch c {
	case SeverityOne, SeverityTwo, SeverityThree, SeverityFour:
		return true
	default:
		return false
	}
}

func (c SeverityClass) Code() int {
	return int(c)
}

func (c SeverityClass) String() string {
	return fmt.Sprintf("%d", int(c))
}

// index maps a class onto a dense [0, numSeverities) slot.
func (c SeverityClass) index() int {
	switch c {
	case SeverityOne:
		return 0
	case SeverityTwo:
		return 1
	case SeverityThree:
		return 2
	case SeverityFour:
		return 3
	default:
		panic(fmt.Errorf("%w: %d", ErrUnknownSeverity, int(c)))
	}
}

// Measured is anything that can report a continuous attribute value.
type Measured interface {
	Value(a Attribute) decimal.Decimal
}

// Vitals holds the three continuous measurements of one observation.
type Vitals struct {
	PressureQuality decimal.Decimal
	Pulse           decimal.Decimal
	Breathing       decimal.Decimal
}

// Value returns the measurement for a. Asking for Class is a programming
// error and panics with ErrNotContinuous.
func (v Vitals) Value(a Attribute) decimal.Decimal {
	switch a {
	case PressureQuality:
		return v.PressureQuality
	case Pulse:
		return v.Pulse
	case Breathing:
		return v.Breathing
	case Class:
		panic(fmt.Errorf("%w: %s", ErrNotContinuous, a))
	default:
		panic(fmt.Errorf("%w: %d", ErrUnknownAttribute, int(a)))
	}
}

// Instance is a labeled training observation.
type Instance struct {
	ID int
	Vitals
	Class SeverityClass
}

// Unlabeled drops the class label.
func (i Instance) Unlabeled() UnlabeledInstance {
	return UnlabeledInstance{ID: i.ID, Vitals: i.Vitals}
}

// UnlabeledInstance is a test observation awaiting classification.
type UnlabeledInstance struct {
	ID int
	Vitals
}

// Prediction pairs a test instance id with the class the tree assigned.
type Prediction struct {
	ID    int
	Class SeverityClass
}

// NewVitals builds a Vitals from float measurements. Mostly useful in tests.
func NewVitals(pressureQuality, pulse, breathing float64) Vitals {
	return Vitals{
		PressureQuality: decimal.NewFromFloat(pressureQuality),
		Pulse:           decimal.NewFromFloat(pulse),
		Breathing:       decimal.NewFromFloat(breathing),
	}
}
