package fakedata

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/smileynet/phonebook"
	"github.com/smileynet/phonebook/internal/contact"
)

func loadEmbedded(t *testing.T, name string) Locale {
	t.Helper()
	loc, err := LoadLocale(phonebook.Locales, name)
	if err != nil {
		t.Fatalf("LoadLocale(%s) error = %v", name, err)
	}
	return loc
}

func TestLoadLocale_Embedded(t *testing.T) {
	ru := loadEmbedded(t, "ru")
	if ru.Male.empty() || ru.Female.empty() {
		t.Error("ru locale should define male and female names")
	}
	if len(ru.Organizations.Names) == 0 {
		t.Error("ru locale should define organizations")
	}

	en := loadEmbedded(t, "en")
	if !en.Male.empty() {
		t.Error("en locale should rely on built-in names")
	}
}

func TestLoadLocale_Errors(t *testing.T) {
	fsys := fstest.MapFS{
		"nophones.yaml": &fstest.MapFile{Data: []byte("male:\n  last_names: [A]\n")},
		"broken.yaml":   &fstest.MapFile{Data: []byte("male: [")},
	}

	if _, err := LoadLocale(fsys, "missing"); err == nil {
		t.Error("LoadLocale(missing) should fail")
	}
	if _, err := LoadLocale(fsys, "broken"); err == nil {
		t.Error("LoadLocale(broken) should fail")
	}
	if _, err := LoadLocale(fsys, "nophones"); !errors.Is(err, ErrNoPhoneFormats) {
		t.Errorf("LoadLocale(nophones) error = %v, want ErrNoPhoneFormats", err)
	}
}

func TestGenerate_Valid(t *testing.T) {
	for _, name := range []string{"ru", "en"} {
		t.Run(name, func(t *testing.T) {
			g := New(loadEmbedded(t, name), 7)
			for i := 0; i < 200; i++ {
				c := g.Generate()
				if err := c.Validate(); err != nil {
					t.Fatalf("Generate() #%d = %+v: %v", i, c, err)
				}
				if strings.Contains(c.Organization, ",") {
					t.Fatalf("organization %q contains a comma", c.Organization)
				}
				if got, ok := contact.Parse(c.String()); !ok || got != c {
					t.Fatalf("generated contact does not round-trip: %+v", c)
				}
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	loc := loadEmbedded(t, "ru")
	a, b := New(loc, 42), New(loc, 42)

	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(a.Generate(), b.Generate()); diff != "" {
			t.Fatalf("same seed diverged at #%d (-a +b):\n%s", i, diff)
		}
	}
}

func TestGenerate_SanitizesInvalidVocabulary(t *testing.T) {
	loc := Locale{
		Male:         Names{LastNames: []string{"O'Brien"}, FirstNames: []string{"J.R."}, MiddleNames: []string{"!!"}},
		PhoneFormats: []string{"8##########"},
	}
	c := New(loc, 1).Generate()

	if c.LastName != "OBrien" {
		t.Errorf("LastName = %q, want %q", c.LastName, "OBrien")
	}
	if c.FirstName != "JR" {
		t.Errorf("FirstName = %q, want %q", c.FirstName, "JR")
	}
	if c.MiddleName != "Unknown" {
		t.Errorf("MiddleName = %q, want %q", c.MiddleName, "Unknown")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

type recordingAdder struct {
	added  []contact.Contact
	failAt int
}

func (r *recordingAdder) Add(c contact.Contact) error {
	if r.failAt > 0 && len(r.added)+1 == r.failAt {
		return errors.New("disk full")
	}
	r.added = append(r.added, c)
	return nil
}

func TestSeed(t *testing.T) {
	dst := &recordingAdder{}
	if err := Seed(dst, New(loadEmbedded(t, "ru"), 3), 5); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if len(dst.added) != 5 {
		t.Errorf("added %d contacts, want 5", len(dst.added))
	}
}

func TestSeed_Zero(t *testing.T) {
	dst := &recordingAdder{}
	if err := Seed(dst, New(loadEmbedded(t, "ru"), 3), 0); err != nil {
		t.Fatal(err)
	}
	if len(dst.added) != 0 {
		t.Errorf("added %d contacts, want 0", len(dst.added))
	}
}

func TestSeed_StopsOnError(t *testing.T) {
	dst := &recordingAdder{failAt: 3}
	err := Seed(dst, New(loadEmbedded(t, "ru"), 3), 5)
	if err == nil {
		t.Fatal("Seed() should fail")
	}
	if !strings.Contains(err.Error(), "3 of 5") {
		t.Errorf("error = %q, want position", err)
	}
	if len(dst.added) != 2 {
		t.Errorf("added %d contacts before failure, want 2", len(dst.added))
	}
}
