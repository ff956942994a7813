package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"
	"golang.org/x/term"

	"github.com/soniclabs/beamkit/internal/catalog"
	"github.com/soniclabs/beamkit/internal/telemetry"
)

// Outcome classifies the result of dispatching one line.
type Outcome int

const (
	// OutcomeOK means the command ran to completion, successfully or not.
	OutcomeOK Outcome = iota
	// OutcomeExit requests session shutdown.
	OutcomeExit
	// OutcomeHelp means help text was rendered, nothing executed.
	OutcomeHelp
	// OutcomeNotFound means the line did not resolve to a visible command.
	OutcomeNotFound
	// OutcomeError means the line could not be parsed or the command failed.
	OutcomeError
	// OutcomeCancelled means the command was interrupted by Ctrl-C.
	OutcomeCancelled
)

// invocation is the single in-flight dispatched command. At most one exists
// per session at a time.
type invocation struct {
	cancel      context.CancelFunc
	cancellable bool
	once        sync.Once
}

// Cancel propagates cancellation to the running command. Idempotent: a
// second interrupt while cleanup from the first is in flight is a no-op.
func (inv *invocation) Cancel() {
	if !inv.cancellable {
		return
	}
	inv.once.Do(inv.cancel)
}

// Dispatch parses line and executes it. User input errors and command
// runtime errors are rendered and absorbed; they never terminate the
// session loop.
func (s *Session) Dispatch(line string) Outcome {
	tokens, err := shlex.Split(line)
	if err != nil {
		fmt.Fprintf(s.stderr, "parse error: %v\n", err)
		return OutcomeError
	}
	if len(tokens) == 0 {
		return OutcomeOK
	}
	tokens = normalize(tokens)

	switch tokens[0] {
	case "exit", "quit":
		return OutcomeExit
	case "help":
		s.printHelp(tokens[1:])
		return OutcomeHelp
	}

	node, rest, ok := s.cfg.Catalog.Resolve(tokens)
	if !ok {
		return s.notFound(tokens[0])
	}
	// A restricted command behaves exactly like an unknown one: no
	// privileged bypass through direct dispatch.
	if s.cfg.Policy.IsRestricted(node.Key(), s.Mode()) {
		return s.notFound(strings.Join(node.Path, catalog.PathSep))
	}
	if !node.Runnable {
		if len(rest) == 0 {
			// Bare topic name: show its help rather than attempting execution.
			s.printHelp(node.Path)
			return OutcomeHelp
		}
		if !strings.HasPrefix(rest[0], "-") {
			// A non-flag token under a topic would have been consumed by
			// Resolve if it named a real subcommand.
			unknown := append(append([]string(nil), node.Path...), rest[0])
			return s.notFound(strings.Join(unknown, catalog.PathSep))
		}
	}

	return s.invoke(node, tokens)
}

// invoke runs a resolved command through the injected runner, guarding the
// terminal state and the active-invocation slot on every exit path.
func (s *Session) invoke(node *catalog.Node, tokens []string) Outcome {
	ctx, cancel := context.WithCancel(context.Background())
	inv := &invocation{cancel: cancel, cancellable: true}
	s.setActive(inv)
	s.setState(StateDispatching)

	// The dispatched command owns stdin for its duration. Capture the
	// terminal state so a command that dies mid-prompt cannot leave the
	// terminal raw.
	fd := int(os.Stdin.Fd())
	var saved *term.State
	if term.IsTerminal(fd) {
		saved, _ = term.GetState(fd)
	}

	start := time.Now()
	err := s.cfg.Runner(ctx, tokens, s.stdout, s.stderr)

	// Cleanup is unconditional and ordered: restore the terminal first,
	// then release the invocation slot. A restoration fault is reported
	// but never aborts the session.
	if saved != nil {
		if rerr := term.Restore(fd, saved); rerr != nil {
			fmt.Fprintf(s.stderr, "warning: could not restore terminal state: %v\n", rerr)
		}
	}
	s.setActive(nil)
	cancel()
	s.setState(StateIdle)

	exitCode := 0
	if err != nil {
		exitCode = 1
	}
	s.tel.Record(telemetry.Event{
		Timestamp:  start,
		Command:    node.Key(),
		DurationMs: time.Since(start).Milliseconds(),
		ExitCode:   exitCode,
		Shell:      true,
	})

	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(s.stdout, "Cancelled.")
			return OutcomeCancelled
		}
		fmt.Fprintf(s.stderr, "Error: %v\n", err)
		fmt.Fprintf(s.stderr, "See 'help %s' for usage.\n", strings.Join(node.Path, " "))
		return OutcomeError
	}
	return OutcomeOK
}

// notFound reports an unknown or invisible command and suggests what the
// user can actually see in the current mode.
func (s *Session) notFound(name string) Outcome {
	fmt.Fprintf(s.stderr, "beam: %q is not a beam command. Type 'help' to list commands.\n", name)
	return OutcomeNotFound
}

// printHelp renders help for a command path, or the top-level overview when
// args is empty. Listings are restriction-filtered, so help never reveals
// commands the mode cannot run.
func (s *Session) printHelp(args []string) {
	args = normalize(args)
	if len(args) == 0 {
		fmt.Fprintln(s.stdout, "Available commands:")
		fmt.Fprintln(s.stdout)
		renderCandidates(s.stdout, s.Complete(nil, "", KindCommand))
		fmt.Fprintln(s.stdout)
		fmt.Fprintln(s.stdout, "Run 'help <command>' for details on one command.")
		return
	}

	path := strings.Join(args, catalog.PathSep)
	desc, ok := s.cfg.Catalog.Describe(path)
	if !ok || s.cfg.Policy.IsRestricted(path, s.Mode()) {
		s.notFound(path)
		return
	}

	fmt.Fprintf(s.stdout, "Usage: %s\n", desc.Usage)
	if desc.Short != "" {
		fmt.Fprintf(s.stdout, "\n%s\n", desc.Short)
	}
	if subs := s.Complete(args, "", KindCommand); len(subs) > 0 {
		fmt.Fprintln(s.stdout, "\nSubcommands:")
		renderCandidates(s.stdout, subs)
	}
	if flags := s.Complete(args, "--", KindFlag); len(flags) > 0 {
		fmt.Fprintln(s.stdout, "\nFlags:")
		renderCandidates(s.stdout, flags)
	}
}
