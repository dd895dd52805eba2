// Package shell implements the numbered, line-based menu for working with a
// phone book over standard input and output.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/smileynet/phonebook/internal/contact"
	"github.com/smileynet/phonebook/internal/search"
)

// Store is the phone book the shell operates on.
type Store interface {
	Count() int
	Pages(size int) int
	ListPage(page, size int) []contact.Contact
	At(index int) (contact.Contact, error)
	Add(c contact.Contact) error
	Edit(index int, f contact.Field, value string) error
	DeleteAt(index int) (contact.Contact, error)
	Search(query string, f contact.Field) []search.Match
}

// Menu items in display order.
const (
	itemList = iota + 1
	itemAdd
	itemEdit
	itemDelete
	itemSearch
	itemExit
)

var menuItems = []string{
	itemList:   "List contacts page by page",
	itemAdd:    "Add a new contact",
	itemEdit:   "Edit a contact",
	itemDelete: "Delete a contact",
	itemSearch: "Search contacts",
	itemExit:   "Exit",
}

// Pager actions.
const (
	pageBack = iota + 1
	pageForward
	pageExit
)

// Option configures a Shell.
type Option func(*Shell)

// WithPageSize sets how many contacts a listing page shows.
func WithPageSize(n int) Option {
	return func(s *Shell) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithLogger sets the logger for shell events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Shell) {
		s.log = l
	}
}

// Shell reads menu choices and field values line by line. Invalid input is
// re-prompted until valid; end of input ends the session.
type Shell struct {
	store    Store
	in       *bufio.Scanner
	out      io.Writer
	pageSize int
	log      zerolog.Logger
}

// New creates a Shell over store reading from in and writing to out.
func New(store Store, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		store:    store,
		in:       bufio.NewScanner(in),
		out:      out,
		pageSize: 10,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run shows the menu until the user exits or input ends. It returns only
// errors that are not caused by user input, such as a failed save.
func (s *Shell) Run() error {
	for {
		s.printMenu()
		choice, err := s.inputInt("Choose a menu item: ")
		if err == nil {
			if choice == itemExit {
				return nil
			}
			err = s.dispatch(choice)
		}
		if errors.Is(err, io.EOF) {
			s.println()
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Shell) dispatch(choice int) error {
	switch choice {
	case itemList:
		return s.list()
	case itemAdd:
		return s.add()
	case itemEdit:
		return s.edit()
	case itemDelete:
		return s.remove()
	case itemSearch:
		return s.search()
	default:
		s.println("Invalid choice.")
		return nil
	}
}

func (s *Shell) printMenu() {
	s.println("Menu:")
	for i := itemList; i <= itemExit; i++ {
		s.printf("%d. %s\n", i, menuItems[i])
	}
}

func (s *Shell) list() error {
	page := 0
	for {
		last := s.store.Pages(s.pageSize) - 1
		s.printPage(page)
		s.printf("Page: %d of %d\n", page+1, last+1)
		if page > 0 {
			s.printf("%d. Back\n", pageBack)
		}
		if page < last {
			s.printf("%d. Forward\n", pageForward)
		}
		s.printf("%d. Exit\n", pageExit)

		action, err := s.inputInt("Choose an action: ")
		if err != nil {
			return err
		}
		switch action {
		case pageBack:
			if page > 0 {
				page--
			} else {
				s.println("You are on the first page.")
			}
		case pageForward:
			if page < last {
				page++
			} else {
				s.println("You are on the last page.")
			}
		case pageExit:
			return nil
		default:
			s.println("Invalid choice.")
		}
	}
}

func (s *Shell) printPage(page int) {
	contacts := s.store.ListPage(page, s.pageSize)
	rows := make([]Row, len(contacts))
	for i, c := range contacts {
		rows[i] = Row{Number: page*s.pageSize + i + 1, Contact: c}
	}
	s.println(RenderTable(rows))
}

func (s *Shell) add() error {
	s.println("New contact:")
	var c contact.Contact
	for _, f := range contact.Fields {
		v, err := s.inputField(f, f.Label()+": ")
		if err != nil {
			return err
		}
		c = c.With(f, v)
	}

	if err := s.store.Add(c); err != nil {
		return err
	}
	s.log.Info().Int("count", s.store.Count()).Msg("contact added")
	s.println("Contact added.")
	return nil
}

func (s *Shell) edit() error {
	index, ok, err := s.inputRecord()
	if err != nil || !ok {
		return err
	}
	c, err := s.store.At(index)
	if err != nil {
		return err
	}

	for i, f := range contact.Fields {
		s.printf("%d. %s: %s\n", i+1, f.Label(), c.Get(f))
	}
	n, err := s.inputInt("Enter the number of the field to edit: ")
	if err != nil {
		return err
	}
	if n < 1 || n > len(contact.Fields) {
		s.println("Invalid field number.")
		return nil
	}
	f := contact.Fields[n-1]

	v, err := s.inputField(f, "New value: ")
	if err != nil {
		return err
	}
	if err := s.store.Edit(index, f, v); err != nil {
		return err
	}
	s.log.Info().Int("index", index).Stringer("field", f).Msg("contact edited")
	s.println("Field updated.")
	return nil
}

func (s *Shell) remove() error {
	s.println("Delete contact:")
	index, ok, err := s.inputRecord()
	if err != nil || !ok {
		return err
	}
	removed, err := s.store.DeleteAt(index)
	if err != nil {
		return err
	}
	s.log.Info().Int("index", index).Msg("contact deleted")
	s.printf("Contact %s deleted.\n", removed)
	return nil
}

func (s *Shell) search() error {
	for i, f := range contact.Fields {
		s.printf("%d. %s\n", i+1, f.Label())
	}
	n, err := s.inputInt("Enter the number of the field to search by: ")
	if err != nil {
		return err
	}
	if n < 1 || n > len(contact.Fields) {
		s.println("Invalid field number.")
		return nil
	}
	f := contact.Fields[n-1]

	query, err := s.readLine("Search query: ")
	if err != nil {
		return err
	}
	matches := s.store.Search(query, f)
	s.log.Debug().Stringer("field", f).Int("matches", len(matches)).Msg("search")
	if len(matches) == 0 {
		s.println("No contacts found.")
		return nil
	}

	rows := make([]Row, len(matches))
	for i, m := range matches {
		rows[i] = Row{Number: m.Index + 1, Contact: m.Contact}
	}
	s.println("Results:")
	s.println(RenderTable(rows))
	return nil
}

// inputRecord asks for a 1-based record number and returns its index.
// ok is false when the number is out of range; the user has been told.
func (s *Shell) inputRecord() (index int, ok bool, err error) {
	n, err := s.inputInt("Enter the record number: ")
	if err != nil {
		return 0, false, err
	}
	if n < 1 || n > s.store.Count() {
		s.println("Invalid record number.")
		return 0, false, nil
	}
	return n - 1, true, nil
}

func (s *Shell) inputInt(prompt string) (int, error) {
	for {
		line, err := s.readLine(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil {
			return n, nil
		}
		s.println("Please enter an integer.")
	}
}

func (s *Shell) inputField(f contact.Field, prompt string) (string, error) {
	for {
		v, err := s.readLine(prompt)
		if err != nil {
			return "", err
		}
		// An empty value would leave a line the loader cannot parse.
		if err := f.Validate(v); err == nil && v != "" {
			return v, nil
		}
		s.println("Please enter a valid value.")
	}
}

// readLine prints prompt and returns the next input line, or io.EOF.
func (s *Shell) readLine(prompt string) (string, error) {
	s.printf("%s", prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("shell: reading input: %w", err)
		}
		return "", io.EOF
	}
	return s.in.Text(), nil
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(args ...any) {
	_, _ = fmt.Fprintln(s.out, args...)
}
