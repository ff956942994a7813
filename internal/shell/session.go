// Package shell provides the interactive beam REPL: a readline session loop
// with restriction-aware tab completion, a command dispatcher, and safe
// signal handling around long-running commands such as open subscriptions.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/soniclabs/beamkit/internal/catalog"
	"github.com/soniclabs/beamkit/internal/config"
	"github.com/soniclabs/beamkit/internal/restrict"
	"github.com/soniclabs/beamkit/internal/telemetry"
)

// CommandRunner executes one beam command and returns its error. The shell
// owns no command logic itself; cmd/shell injects a runner that builds a
// fresh root command per invocation so flag state never bleeds between
// dispatches.
type CommandRunner func(ctx context.Context, args []string, stdout, stderr io.Writer) error

// State is the session loop state.
type State int

const (
	// StateIdle means the loop is between lines.
	StateIdle State = iota
	// StateEditing means the editor owns the keyboard and a line is being
	// composed.
	StateEditing
	// StateDispatching means a submitted line is executing and owns stdin.
	StateDispatching
	// StateExiting means shutdown is in progress.
	StateExiting
)

const maxHistory = 1000

// Config assembles the session's collaborators.
type Config struct {
	Catalog *catalog.Catalog
	Policy  *restrict.Policy
	Mode    restrict.Mode
	Store   config.Accessor
	Runner  CommandRunner

	HistoryFile string
	Version     string
	NoBanner    bool

	// Stdout and Stderr default to the process streams; tests substitute
	// buffers.
	Stdout io.Writer
	Stderr io.Writer
}

// Session is one interactive shell process. Create with New, start with Run.
type Session struct {
	cfg    Config
	stdout io.Writer
	stderr io.Writer

	rl    *readline.Instance
	tel   *telemetry.Store
	cache *listCache

	mu      sync.Mutex
	mode    restrict.Mode
	state   State
	active  *invocation
	history []string
}

// New validates cfg and creates a Session.
func New(cfg Config) (*Session, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("shell: Config.Catalog must not be nil")
	}
	if cfg.Policy == nil {
		return nil, errors.New("shell: Config.Policy must not be nil")
	}
	if cfg.Runner == nil {
		return nil, errors.New("shell: Config.Runner must not be nil")
	}
	s := &Session{
		cfg:    cfg,
		stdout: cfg.Stdout,
		stderr: cfg.Stderr,
		mode:   cfg.Mode,
		tel:    telemetry.DefaultStore(),
		cache:  newListCache(),
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}
	return s, nil
}

// Run starts the session loop and blocks until the user exits via Ctrl-D on
// an empty line or the "exit" command. A clean exit returns nil.
func (s *Session) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 s.prompt(),
		HistoryFile:            s.cfg.HistoryFile,
		AutoComplete:           &lineCompleter{session: s},
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return fmt.Errorf("shell: initialise readline: %w", err)
	}
	s.rl = rl
	defer rl.Close()

	// The session owns exactly one SIGINT registration for its lifetime.
	// While the editor is in raw mode readline consumes Ctrl-C itself; the
	// handler only fires while a dispatched command owns the terminal.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)
	go func() {
		for range sigc {
			s.interrupt()
		}
	}()

	if !s.cfg.NoBanner {
		s.printBanner()
	}

	for {
		s.setState(StateEditing)
		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl-C with a non-empty buffer clears it; on an empty line a
			// single press only hints at how to leave.
			if strings.TrimSpace(line) == "" {
				fmt.Fprintln(s.stdout, "Press Ctrl-D or type 'exit' to leave the shell.")
			}
			s.setState(StateIdle)
			continue
		}
		if err != nil {
			return fmt.Errorf("shell: readline: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			s.setState(StateIdle)
			continue
		}
		s.pushHistory(line)

		if outcome := s.Dispatch(line); outcome == OutcomeExit {
			break
		}
		s.setState(StateIdle)
	}

	s.setState(StateExiting)
	return nil
}

func (s *Session) printBanner() {
	version := s.cfg.Version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(s.stdout, "beam %s — interactive shell\n", version)
	fmt.Fprintln(s.stdout, "Type 'help' for commands, 'exit' to quit. Tab completes.")
	fmt.Fprintln(s.stdout)
}

// pushHistory appends line to the session history. Empty lines and lines
// identical to the most recent entry are skipped; the history is bounded.
func (s *Session) pushHistory(line string) {
	if line == "" {
		return
	}
	s.mu.Lock()
	if n := len(s.history); n > 0 && s.history[n-1] == line {
		s.mu.Unlock()
		return
	}
	s.history = append(s.history, line)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	s.mu.Unlock()

	if s.rl != nil {
		s.rl.SaveHistory(line)
	}
}

// History returns a copy of the session history, oldest first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// Mode returns the active restriction mode.
func (s *Session) Mode() restrict.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the restriction mode. The completion cache is
// invalidated before SetMode returns, so a completion request immediately
// after a mode change always observes the new mode.
func (s *Session) SetMode(mode restrict.Mode) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	s.cache.invalidate()
}

// Refresh recomputes the prompt from the config store and invalidates the
// completion cache. The config watcher calls it when the config file
// changes out-of-band.
func (s *Session) Refresh() {
	s.cache.invalidate()
	if s.rl != nil {
		s.rl.SetPrompt(s.prompt())
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// interrupt cancels the active invocation, if there is a cancellable one.
// Repeated interrupts while cleanup is in flight are no-ops.
func (s *Session) interrupt() {
	s.mu.Lock()
	inv := s.active
	s.mu.Unlock()
	if inv != nil {
		inv.Cancel()
	}
}

func (s *Session) setActive(inv *invocation) {
	s.mu.Lock()
	s.active = inv
	s.mu.Unlock()
}
