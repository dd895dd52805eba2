// Package store keeps the phone book in memory and synchronized with its
// backing text file.
package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/smileynet/phonebook/internal/contact"
	"github.com/smileynet/phonebook/internal/search"
)

// Sentinel errors for rejected mutations. Neither touches the backing file.
var (
	ErrIndexOutOfRange = errors.New("store: index out of range")
	ErrUnknownField    = errors.New("store: unknown field")
)

// maxLineSize bounds a single line of the backing file.
const maxLineSize = 1 << 20

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets the logger used for load, save, and mutation events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *FileStore) {
		s.log = l
	}
}

// WithThreshold sets the minimum similarity score for Search.
func WithThreshold(threshold int) Option {
	return func(s *FileStore) {
		s.threshold = threshold
	}
}

// FileStore is an ordered sequence of contacts persisted to a single file.
// Every successful mutation rewrites the whole file. It is not safe for
// concurrent use, and two processes sharing a file overwrite each other.
type FileStore struct {
	path      string
	contacts  []contact.Contact
	threshold int
	log       zerolog.Logger
}

// NewFileStore creates an unloaded FileStore backed by path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path:      path,
		threshold: search.DefaultThreshold,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// ClearFile truncates the backing file. In-memory contacts are kept.
func (s *FileStore) ClearFile() error {
	if err := os.WriteFile(s.path, nil, 0o644); err != nil {
		return fmt.Errorf("store: clearing %s: %w", s.path, err)
	}
	s.log.Debug().Str("path", s.path).Msg("cleared contacts file")
	return nil
}

// Load reads the backing file, creating it empty if missing, and appends every
// well-formed line to the in-memory sequence. Malformed lines are skipped.
// Calling Load twice appends the file contents twice.
func (s *FileStore) Load() error {
	f, err := os.OpenFile(s.path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("store: opening %s: %w", s.path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	loaded, skipped := 0, 0
	for lineNo := 1; sc.Scan(); lineNo++ {
		c, ok := contact.Parse(sc.Text())
		if !ok {
			skipped++
			s.log.Debug().Int("line", lineNo).Msg("skipping malformed line")
			continue
		}
		s.contacts = append(s.contacts, c)
		loaded++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("store: reading %s: %w", s.path, err)
	}

	s.log.Debug().Str("path", s.path).Int("loaded", loaded).Int("skipped", skipped).Msg("loaded contacts")
	return nil
}

// Save rewrites the backing file with every contact, one per line, in order.
// A failed write may leave the file truncated.
func (s *FileStore) Save() error {
	var buf bytes.Buffer
	for _, c := range s.contacts {
		buf.WriteString(c.String())
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	s.log.Debug().Str("path", s.path).Int("count", len(s.contacts)).Msg("saved contacts")
	return nil
}

// Add appends c without validating it and saves.
func (s *FileStore) Add(c contact.Contact) error {
	s.contacts = append(s.contacts, c)
	if err := s.Save(); err != nil {
		return err
	}
	s.log.Debug().Int("index", len(s.contacts)-1).Msg("added contact")
	return nil
}

// AddContact builds a contact from the six raw field values, appends it, and saves.
func (s *FileStore) AddContact(lastName, firstName, middleName, organization, workPhone, personalPhone string) error {
	return s.Add(contact.Contact{
		LastName:      lastName,
		FirstName:     firstName,
		MiddleName:    middleName,
		Organization:  organization,
		WorkPhone:     workPhone,
		PersonalPhone: personalPhone,
	})
}

// EditField sets the named field of the contact at index and saves.
// It returns ErrUnknownField for names outside the six known fields.
func (s *FileStore) EditField(index int, fieldName, value string) error {
	f, ok := contact.ParseField(fieldName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, fieldName)
	}
	return s.Edit(index, f, value)
}

// Edit replaces the contact at index with a copy whose field f is value, then saves.
func (s *FileStore) Edit(index int, f contact.Field, value string) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	if err := s.checkIndex(index); err != nil {
		return err
	}

	s.contacts[index] = s.contacts[index].With(f, value)
	if err := s.Save(); err != nil {
		return err
	}
	s.log.Debug().Int("index", index).Stringer("field", f).Msg("edited contact")
	return nil
}

// DeleteAt removes the contact at index, shifting later contacts down, and
// saves. It returns the removed contact.
func (s *FileStore) DeleteAt(index int) (contact.Contact, error) {
	if err := s.checkIndex(index); err != nil {
		return contact.Contact{}, err
	}

	removed := s.contacts[index]
	s.contacts = append(s.contacts[:index], s.contacts[index+1:]...)
	if err := s.Save(); err != nil {
		return removed, err
	}
	s.log.Debug().Int("index", index).Msg("deleted contact")
	return removed, nil
}

// ListPage returns the contacts in [page*size, (page+1)*size), clipped to the
// sequence. Pages are 0-based; an out-of-range page yields an empty slice.
func (s *FileStore) ListPage(page, size int) []contact.Contact {
	if page < 0 || size <= 0 {
		return nil
	}
	start := page * size
	if start >= len(s.contacts) {
		return nil
	}
	end := min(start+size, len(s.contacts))

	out := make([]contact.Contact, end-start)
	copy(out, s.contacts[start:end])
	return out
}

// Pages returns how many pages of size the sequence spans, at least 1.
func (s *FileStore) Pages(size int) int {
	if size <= 0 || len(s.contacts) == 0 {
		return 1
	}
	return (len(s.contacts) + size - 1) / size
}

// Count returns the number of in-memory contacts.
func (s *FileStore) Count() int {
	return len(s.contacts)
}

// At returns the contact at index.
func (s *FileStore) At(index int) (contact.Contact, error) {
	if err := s.checkIndex(index); err != nil {
		return contact.Contact{}, err
	}
	return s.contacts[index], nil
}

// Contacts returns a copy of the in-memory sequence.
func (s *FileStore) Contacts() []contact.Contact {
	out := make([]contact.Contact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

// Search returns contacts whose field f fuzzily matches query.
func (s *FileStore) Search(query string, f contact.Field) []search.Match {
	return search.Search(s.contacts, query, f, s.threshold)
}

func (s *FileStore) checkIndex(index int) error {
	if index < 0 || index >= len(s.contacts) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(s.contacts))
	}
	return nil
}

// ResolvePath picks the backing file for name. An absolute name, or one that
// already exists relative to the working directory, is used as given;
// otherwise name is placed under baseDir. An empty baseDir means the
// directory of the running executable.
func ResolvePath(name, baseDir string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	if _, err := os.Stat(name); err == nil {
		return name, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("store: checking %s: %w", name, err)
	}

	if baseDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("store: locating executable: %w", err)
		}
		baseDir = filepath.Dir(exe)
	}
	return filepath.Join(baseDir, name), nil
}
