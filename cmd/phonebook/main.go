package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/smileynet/phonebook"
	"github.com/smileynet/phonebook/internal/browse"
	"github.com/smileynet/phonebook/internal/config"
	"github.com/smileynet/phonebook/internal/fakedata"
	"github.com/smileynet/phonebook/internal/logging"
	"github.com/smileynet/phonebook/internal/shell"
	"github.com/smileynet/phonebook/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals holds flags shared by every command.
type Globals struct {
	Clear    bool   `help:"Clear the contacts file before loading." short:"c"`
	FakeData int    `name:"fakedata" help:"Fill the phone book with N random contacts." short:"F" placeholder:"N"`
	File     string `help:"Contacts file (default: contacts.txt)." short:"f" placeholder:"PATH"`
	Config   string `help:"Extra config file layered over user and project config." placeholder:"PATH"`
	LogLevel string `help:"Log level: debug, info, warn, error." name:"log-level"`
}

// CLI is the top-level command structure for phonebook.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	Menu    MenuCmd          `cmd:"" default:"1" help:"Run the interactive menu (default)."`
	Browse  BrowseCmd        `cmd:"" help:"Open the full-screen browser."`
}

// ErrNegativeFakeData rejects a negative --fakedata count.
var ErrNegativeFakeData = errors.New("fakedata: N must be non-negative")

// loadConfig loads layered config from user, project, and flag paths with
// env and flag overrides applied.
func loadConfig(g *Globals) (*config.Config, error) {
	home, _ := os.UserHomeDir()
	userPath := ""
	if home != "" {
		userPath = filepath.Join(home, ".config", "phonebook", "config.yaml")
	}

	cfg, err := config.LoadLayered(userPath, ".phonebook.yaml", g.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.File != "" {
		cfg.Store.File = g.File
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is a loaded phone book with its config and logger.
type session struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    *store.FileStore
	closeLog func() error
}

func (s *session) Close() error {
	return s.closeLog()
}

// openSession resolves the contacts file, optionally clears it, loads it,
// and optionally seeds it with synthetic contacts.
func openSession(g *Globals) (*session, error) {
	if g.FakeData < 0 {
		return nil, fmt.Errorf("%w, got %d", ErrNegativeFakeData, g.FakeData)
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	sess := &session{cfg: cfg, log: log, closeLog: closeLog}

	path, err := store.ResolvePath(cfg.Store.File, cfg.Store.BaseDir)
	if err != nil {
		_ = sess.Close()
		return nil, err
	}
	sess.store = store.NewFileStore(path,
		store.WithLogger(log),
		store.WithThreshold(cfg.Search.Threshold),
	)

	if err := sess.prepare(g); err != nil {
		_ = sess.Close()
		return nil, err
	}
	return sess, nil
}

func (s *session) prepare(g *Globals) error {
	if g.Clear {
		if err := s.store.ClearFile(); err != nil {
			return err
		}
		s.log.Info().Str("path", s.store.Path()).Msg("contacts file cleared")
	}

	if err := s.store.Load(); err != nil {
		return err
	}

	if g.FakeData > 0 {
		fsys := phonebook.OverlayFS(s.cfg.FakeData.DataDir, phonebook.Locales)
		locale, err := fakedata.LoadLocale(fsys, s.cfg.FakeData.Locale)
		if err != nil {
			return err
		}
		gen := fakedata.New(locale, s.cfg.FakeData.Seed)
		if err := fakedata.Seed(s.store, gen, g.FakeData); err != nil {
			return err
		}
		s.log.Info().Int("count", g.FakeData).Str("locale", s.cfg.FakeData.Locale).Msg("seeded synthetic contacts")
	}
	return nil
}

// MenuCmd runs the interactive menu.
type MenuCmd struct{}

// Run opens the phone book and runs the menu on stdin and stdout.
func (m *MenuCmd) Run(g *Globals) error {
	sess, err := openSession(g)
	if err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	defer sess.Close()

	return m.run(sess, os.Stdin, os.Stdout)
}

// run drives the shell over in and out, enabling testable wiring.
func (m *MenuCmd) run(sess *session, in io.Reader, out io.Writer) error {
	sh := shell.New(sess.store, in, out,
		shell.WithPageSize(sess.cfg.Display.PageSize),
		shell.WithLogger(sess.log),
	)
	if err := sh.Run(); err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	return nil
}

// BrowseCmd opens the full-screen browser.
type BrowseCmd struct{}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run opens the phone book and launches the browser TUI.
func (b *BrowseCmd) Run(g *Globals) error {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !isTTY {
		return b.run(false, nil)
	}

	sess, err := openSession(g)
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	defer sess.Close()

	prog := tea.NewProgram(browse.NewModel(sess.store), tea.WithAltScreen())
	return b.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (b *BrowseCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("phonebook"),
		kong.Description("A command-line phone book backed by a flat text file."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
