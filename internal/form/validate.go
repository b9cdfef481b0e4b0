package form

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

// Form field names used in ValidationError.Field.
const (
	FieldModel     = "model"
	FieldBrand     = "brand"
	FieldBuiltYear = "built_year"
	FieldYear      = "year"
	FieldPrice     = "price"
)

// Submission is a validated, converted form ready for the store.
type Submission struct {
	Model     string
	Brand     string
	BuiltYear int
	Year      int
	Price     float64
}

// yearFields carries the second rule. The number tag accepts ASCII digits
// only: no sign, no decimal point.
type yearFields struct {
	BuiltYear string `json:"built_year" validate:"number"`
	Year      string `json:"year" validate:"number"`
}

// validate reports fields by their JSON name. Safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate trims every field and applies the rules in order: all five
// present, both years made only of decimal digits, price a finite number.
// It returns the first rule that fails.
func Validate(in Fields) (Submission, error) {
	in = in.trimmed()

	if err := checkStruct(in, types.ReasonMissingField); err != nil {
		return Submission{}, err
	}
	if err := checkStruct(yearFields{BuiltYear: in.BuiltYear, Year: in.Year}, types.ReasonNonNumericYear); err != nil {
		return Submission{}, err
	}

	// A value too large for int is as unusable as a non-numeric one.
	builtYear, err := strconv.Atoi(in.BuiltYear)
	if err != nil {
		return Submission{}, &types.ValidationError{Field: FieldBuiltYear, Reason: types.ReasonNonNumericYear}
	}
	year, err := strconv.Atoi(in.Year)
	if err != nil {
		return Submission{}, &types.ValidationError{Field: FieldYear, Reason: types.ReasonNonNumericYear}
	}

	price, ok := parsePrice(in.Price)
	if !ok {
		return Submission{}, &types.ValidationError{Field: FieldPrice, Reason: types.ReasonNonNumericPrice}
	}

	return Submission{
		Model:     in.Model,
		Brand:     in.Brand,
		BuiltYear: builtYear,
		Year:      year,
		Price:     price,
	}, nil
}

// checkStruct runs the struct's validate tags and turns the first failing
// field into a ValidationError with reason.
func checkStruct(s any, reason string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &types.ValidationError{Field: fieldErrs[0].Field(), Reason: reason}
	}
	return err
}

// parsePrice accepts decimal floats. Hex floats are refused.
func parsePrice(s string) (float64, bool) {
	if digits := strings.TrimLeft(s, "+-"); len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, false
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	// SQLite stores NaN as NULL and the list could not show infinity.
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	return p, true
}

func (f Fields) trimmed() Fields {
	return Fields{
		Model:     strings.TrimSpace(f.Model),
		Brand:     strings.TrimSpace(f.Brand),
		BuiltYear: strings.TrimSpace(f.BuiltYear),
		Year:      strings.TrimSpace(f.Year),
		Price:     strings.TrimSpace(f.Price),
	}
}
