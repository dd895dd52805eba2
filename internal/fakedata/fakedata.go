// Package fakedata generates syntactically valid synthetic contacts for
// seeding a phone book.
package fakedata

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"gopkg.in/yaml.v3"

	"github.com/smileynet/phonebook/internal/contact"
)

// maxAttempts bounds retries for a vocabulary value that fails validation.
const maxAttempts = 20

// ErrNoPhoneFormats indicates a locale file lists no phone formats.
var ErrNoPhoneFormats = errors.New("fakedata: locale has no phone formats")

// Names is one gender's name vocabulary.
type Names struct {
	LastNames   []string `yaml:"last_names"`
	FirstNames  []string `yaml:"first_names"`
	MiddleNames []string `yaml:"middle_names"`
}

func (n Names) empty() bool {
	return len(n.LastNames) == 0 || len(n.FirstNames) == 0 || len(n.MiddleNames) == 0
}

// Organizations is the vocabulary for organization names.
type Organizations struct {
	Forms []string `yaml:"forms"`
	Names []string `yaml:"names"`
}

// Locale is the vocabulary loaded from a locale file. Empty name or
// organization lists fall back to gofakeit's built-in English vocabulary.
type Locale struct {
	Male          Names         `yaml:"male"`
	Female        Names         `yaml:"female"`
	Organizations Organizations `yaml:"organizations"`
	PhoneFormats  []string      `yaml:"phone_formats"` // '#' is replaced by a digit
}

// LoadLocale reads <name>.yaml from fsys.
func LoadLocale(fsys fs.FS, name string) (Locale, error) {
	data, err := fs.ReadFile(fsys, name+".yaml")
	if err != nil {
		return Locale{}, fmt.Errorf("fakedata: reading locale %s: %w", name, err)
	}

	var loc Locale
	if err := yaml.Unmarshal(data, &loc); err != nil {
		return Locale{}, fmt.Errorf("fakedata: parsing locale %s: %w", name, err)
	}
	if len(loc.PhoneFormats) == 0 {
		return Locale{}, fmt.Errorf("%w: %s", ErrNoPhoneFormats, name)
	}
	return loc, nil
}

// Generator produces random contacts from a locale. Each Generator owns its
// random source; a non-zero seed makes the sequence reproducible.
type Generator struct {
	faker  *gofakeit.Faker
	locale Locale
}

// New creates a Generator. Seed 0 picks a random seed.
func New(locale Locale, seed uint64) *Generator {
	return &Generator{
		faker:  gofakeit.New(seed),
		locale: locale,
	}
}

// Generate returns one contact whose names and phones pass validation and
// whose organization contains no comma.
func (g *Generator) Generate() contact.Contact {
	names := g.locale.Male
	if g.faker.Bool() && !g.locale.Female.empty() {
		names = g.locale.Female
	}

	var last, first, middle string
	if names.empty() {
		last = g.name(g.faker.LastName)
		first = g.name(g.faker.FirstName)
		middle = g.name(g.faker.FirstName)
	} else {
		last = g.name(func() string { return g.faker.RandomString(names.LastNames) })
		first = g.name(func() string { return g.faker.RandomString(names.FirstNames) })
		middle = g.name(func() string { return g.faker.RandomString(names.MiddleNames) })
	}

	return contact.Contact{
		LastName:      last,
		FirstName:     first,
		MiddleName:    middle,
		Organization:  g.organization(),
		WorkPhone:     g.phone(),
		PersonalPhone: g.phone(),
	}
}

// name draws from next until the value is a valid name. Vocabularies that
// keep failing are reduced to their valid characters.
func (g *Generator) name(next func() string) string {
	var v string
	for range maxAttempts {
		v = next()
		if contact.ValidateName(v) == nil {
			return v
		}
	}
	return sanitizeName(v)
}

func sanitizeName(v string) string {
	var b strings.Builder
	for _, r := range v {
		if contact.ValidateName(string(r)) == nil {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Unknown"
	}
	return b.String()
}

func (g *Generator) organization() string {
	orgs := g.locale.Organizations
	var v string
	if len(orgs.Names) == 0 {
		v = g.faker.Company()
	} else {
		v = g.faker.RandomString(orgs.Names)
		if len(orgs.Forms) > 0 {
			v = fmt.Sprintf("%s %q", g.faker.RandomString(orgs.Forms), v)
		}
	}
	return strings.ReplaceAll(v, ",", "")
}

func (g *Generator) phone() string {
	return g.faker.Numerify(g.faker.RandomString(g.locale.PhoneFormats))
}

// Adder receives generated contacts.
type Adder interface {
	Add(c contact.Contact) error
}

// Seed adds n generated contacts to dst one at a time, so each one is
// persisted before the next is generated. It stops at the first error.
func Seed(dst Adder, g *Generator, n int) error {
	for i := range n {
		if err := dst.Add(g.Generate()); err != nil {
			return fmt.Errorf("fakedata: adding contact %d of %d: %w", i+1, n, err)
		}
	}
	return nil
}
