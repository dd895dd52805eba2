// Package contact defines the six-field contact record, its line format, and
// field validation.
package contact

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Field identifies one of the six contact fields.
type Field int

const (
	LastName Field = iota
	FirstName
	MiddleName
	Organization
	WorkPhone
	PersonalPhone
)

// Fields lists every field in line order.
var Fields = []Field{LastName, FirstName, MiddleName, Organization, WorkPhone, PersonalPhone}

// String returns the canonical field name, e.g. "last_name".
func (f Field) String() string {
	switch f {
	case LastName:
		return "last_name"
	case FirstName:
		return "first_name"
	case MiddleName:
		return "middle_name"
	case Organization:
		return "organization"
	case WorkPhone:
		return "work_phone"
	case PersonalPhone:
		return "personal_phone"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Label returns the human-readable column title for the field.
func (f Field) Label() string {
	switch f {
	case LastName:
		return "Last name"
	case FirstName:
		return "First name"
	case MiddleName:
		return "Middle name"
	case Organization:
		return "Organization"
	case WorkPhone:
		return "Work phone"
	case PersonalPhone:
		return "Personal phone"
	default:
		return f.String()
	}
}

// Valid reports whether f is one of the six known fields.
func (f Field) Valid() bool {
	return f >= LastName && f <= PersonalPhone
}

// ParseField maps a canonical field name to its Field.
func ParseField(name string) (Field, bool) {
	for _, f := range Fields {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}

// Labels returns the display labels of all fields in line order.
func Labels() []string {
	labels := make([]string, len(Fields))
	for i, f := range Fields {
		labels[i] = f.Label()
	}
	return labels
}

// Contact is one phone book entry.
type Contact struct {
	LastName      string
	FirstName     string
	MiddleName    string
	Organization  string
	WorkPhone     string
	PersonalPhone string
}

// Get returns the value of field f. Unknown fields yield "".
func (c Contact) Get(f Field) string {
	switch f {
	case LastName:
		return c.LastName
	case FirstName:
		return c.FirstName
	case MiddleName:
		return c.MiddleName
	case Organization:
		return c.Organization
	case WorkPhone:
		return c.WorkPhone
	case PersonalPhone:
		return c.PersonalPhone
	default:
		return ""
	}
}

// With returns a copy of c with field f set to v. Unknown fields leave c unchanged.
func (c Contact) With(f Field, v string) Contact {
	switch f {
	case LastName:
		c.LastName = v
	case FirstName:
		c.FirstName = v
	case MiddleName:
		c.MiddleName = v
	case Organization:
		c.Organization = v
	case WorkPhone:
		c.WorkPhone = v
	case PersonalPhone:
		c.PersonalPhone = v
	}
	return c
}

// Values returns the field values in line order.
func (c Contact) Values() []string {
	values := make([]string, len(Fields))
	for i, f := range Fields {
		values[i] = c.Get(f)
	}
	return values
}

// String serializes c as a single comma-joined line without a trailing newline.
// Commas inside values are not escaped, so such values do not survive Parse.
func (c Contact) String() string {
	return strings.Join(c.Values(), ",")
}

var lineFormat = regexp.MustCompile(`^([^,]+),([^,]+),([^,]+),([^,]+),([^,]+),([^,]+)`)

// Parse extracts a Contact from one line of the backing file.
// It returns false when the line does not hold six non-empty fields;
// callers skip such lines. Anything after the sixth field is ignored.
func Parse(line string) (Contact, bool) {
	line = strings.TrimRight(line, "\r\n")
	m := lineFormat.FindStringSubmatch(line)
	if m == nil {
		return Contact{}, false
	}
	return Contact{
		LastName:      m[1],
		FirstName:     m[2],
		MiddleName:    m[3],
		Organization:  m[4],
		WorkPhone:     m[5],
		PersonalPhone: m[6],
	}, true
}

// Validation errors.
var (
	ErrInvalidName  = errors.New("contact: invalid name")
	ErrInvalidPhone = errors.New("contact: invalid phone number")
)

var (
	// \w is spelled out so non-ASCII letters count as word characters.
	namePattern  = regexp.MustCompile(`^[\p{L}\p{N}_\s-]+$`)
	phonePattern = regexp.MustCompile(`^(\+7|8)?(\s|\()?(\d{3})(\s|\))?(\d{3})(\s|\-|\))?(\d{2})(\s|\-)?(\d{2})$`)
)

// ValidateName checks a last, first, or middle name.
func ValidateName(v string) error {
	if !namePattern.MatchString(v) {
		return fmt.Errorf("%w: %q", ErrInvalidName, v)
	}
	return nil
}

// ValidatePhone checks a work or personal phone number.
func ValidatePhone(v string) error {
	if !phonePattern.MatchString(v) {
		return fmt.Errorf("%w: %q", ErrInvalidPhone, v)
	}
	return nil
}

// Validate checks v against the rules for field f. Organization is free text.
func (f Field) Validate(v string) error {
	switch f {
	case LastName, FirstName, MiddleName:
		return ValidateName(v)
	case WorkPhone, PersonalPhone:
		return ValidatePhone(v)
	default:
		return nil
	}
}

// Validate checks every field of c and returns the first violation.
func (c Contact) Validate() error {
	for _, f := range Fields {
		if err := f.Validate(c.Get(f)); err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
	}
	return nil
}
