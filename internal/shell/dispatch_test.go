package shell

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/soniclabs/beamkit/internal/restrict"
)

func TestDispatchExit(t *testing.T) {
	sess, rec, _, _ := newTestSession(t, restrict.Mode{})
	if got := sess.Dispatch("exit"); got != OutcomeExit {
		t.Errorf("Dispatch(exit) = %v", got)
	}
	if got := sess.Dispatch("quit"); got != OutcomeExit {
		t.Errorf("Dispatch(quit) = %v", got)
	}
	if rec.args != nil {
		t.Errorf("exit should not reach the runner, got %v", rec.args)
	}
}

func TestDispatchEmptyLine(t *testing.T) {
	sess, rec, _, _ := newTestSession(t, restrict.Mode{})
	if got := sess.Dispatch("   "); got != OutcomeOK {
		t.Errorf("Dispatch(blank) = %v", got)
	}
	if rec.args != nil {
		t.Error("blank line should not reach the runner")
	}
}

func TestDispatchRunsCommand(t *testing.T) {
	sess, rec, _, _ := newTestSession(t, restrict.Mode{})
	if got := sess.Dispatch("channels publish updates hello"); got != OutcomeOK {
		t.Errorf("Dispatch = %v", got)
	}
	want := []string{"channels", "publish", "updates", "hello"}
	if !reflect.DeepEqual(rec.args, want) {
		t.Errorf("runner args = %v, want %v", rec.args, want)
	}
}

func TestDispatchColonForm(t *testing.T) {
	sess, rec, _, _ := newTestSession(t, restrict.Mode{})
	if got := sess.Dispatch("channels:publish updates hello"); got != OutcomeOK {
		t.Errorf("Dispatch = %v", got)
	}
	want := []string{"channels", "publish", "updates", "hello"}
	if !reflect.DeepEqual(rec.args, want) {
		t.Errorf("runner args = %v, want %v", rec.args, want)
	}
}

func TestDispatchTypoIsNotFound(t *testing.T) {
	sess, rec, _, stderr := newTestSession(t, restrict.Mode{})
	if got := sess.Dispatch("channels:pubish updates hi"); got != OutcomeNotFound {
		t.Errorf("Dispatch(typo) = %v", got)
	}
	if rec.args != nil {
		t.Error("typo should not reach the runner")
	}
	if !strings.Contains(stderr.String(), "is not a beam command") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if sess.State() != StateIdle && sess.State() != StateEditing {
		// Dispatch itself never leaves the session stuck in dispatching.
		t.Errorf("state after typo = %v", sess.State())
	}
}

func TestDispatchUnknownSubcommand(t *testing.T) {
	sess, rec, _, stderr := newTestSession(t, restrict.Mode{})
	if got := sess.Dispatch("channels pubish"); got != OutcomeNotFound {
		t.Errorf("Dispatch = %v", got)
	}
	if rec.args != nil {
		t.Errorf("unknown subcommand should not reach the runner, got %v", rec.args)
	}
	if !strings.Contains(stderr.String(), `"channels:pubish"`) {
		t.Errorf("stderr should name the unmatched path, got %q", stderr.String())
	}
}

func TestDispatchUnknownTopLevel(t *testing.T) {
	sess, _, _, stderr := newTestSession(t, restrict.Mode{})
	if got := sess.Dispatch("frobnicate"); got != OutcomeNotFound {
		t.Errorf("Dispatch = %v", got)
	}
	if !strings.Contains(stderr.String(), `"frobnicate"`) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestDispatchRestrictedBehavesLikeUnknown(t *testing.T) {
	sess, rec, _, stderr := newTestSession(t, restrict.Mode{Hosted: true})
	if got := sess.Dispatch("accounts login tok_123"); got != OutcomeNotFound {
		t.Errorf("Dispatch(restricted) = %v", got)
	}
	if rec.args != nil {
		t.Error("restricted command must not execute")
	}
	if !strings.Contains(stderr.String(), "is not a beam command") {
		t.Errorf("stderr should match the unknown-command message, got %q", stderr.String())
	}
}

func TestDispatchBareTopicShowsHelp(t *testing.T) {
	sess, rec, stdout, _ := newTestSession(t, restrict.Mode{})
	if got := sess.Dispatch("channels"); got != OutcomeHelp {
		t.Errorf("Dispatch(channels) = %v", got)
	}
	if rec.args != nil {
		t.Error("bare topic should not execute")
	}
	out := stdout.String()
	if !strings.Contains(out, "publish") || !strings.Contains(out, "subscribe") {
		t.Errorf("help output missing subcommands: %q", out)
	}
}

func TestDispatchHelpOverview(t *testing.T) {
	sess, _, stdout, _ := newTestSession(t, restrict.Mode{})
	if got := sess.Dispatch("help"); got != OutcomeHelp {
		t.Errorf("Dispatch(help) = %v", got)
	}
	out := stdout.String()
	for _, want := range []string{"channels", "accounts", "exit"} {
		if !strings.Contains(out, want) {
			t.Errorf("overview missing %q: %q", want, out)
		}
	}
}

func TestDispatchHelpForCommand(t *testing.T) {
	sess, _, stdout, _ := newTestSession(t, restrict.Mode{})
	if got := sess.Dispatch("help channels publish"); got != OutcomeHelp {
		t.Errorf("Dispatch = %v", got)
	}
	out := stdout.String()
	if !strings.Contains(out, "Usage:") || !strings.Contains(out, "--count") {
		t.Errorf("command help = %q", out)
	}
}

func TestDispatchHelpRestrictedCommand(t *testing.T) {
	sess, _, _, stderr := newTestSession(t, restrict.Mode{Hosted: true})
	sess.Dispatch("help accounts")
	if !strings.Contains(stderr.String(), "is not a beam command") {
		t.Errorf("restricted help should report unknown, got %q", stderr.String())
	}
}

func TestDispatchParseError(t *testing.T) {
	sess, _, _, stderr := newTestSession(t, restrict.Mode{})
	if got := sess.Dispatch(`channels publish "unterminated`); got != OutcomeError {
		t.Errorf("Dispatch = %v", got)
	}
	if !strings.Contains(stderr.String(), "parse error") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestDispatchCommandErrorAbsorbed(t *testing.T) {
	sess, rec, _, stderr := newTestSession(t, restrict.Mode{})
	rec.err = errors.New("queue already exists")

	if got := sess.Dispatch("queues create jobs"); got != OutcomeError {
		t.Errorf("Dispatch = %v", got)
	}
	out := stderr.String()
	if !strings.Contains(out, "queue already exists") {
		t.Errorf("stderr = %q", out)
	}
	if !strings.Contains(out, "See 'help queues create' for usage.") {
		t.Errorf("stderr missing usage hint: %q", out)
	}
	if sess.State() == StateDispatching {
		t.Error("session stuck in dispatching state after error")
	}
}

func TestDispatchCancellation(t *testing.T) {
	sess, rec, stdout, _ := newTestSession(t, restrict.Mode{})
	started := make(chan struct{})
	rec.fn = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}

	done := make(chan Outcome, 1)
	go func() { done <- sess.Dispatch("channels subscribe updates") }()

	<-started
	// A flurry of interrupts must collapse into one cancellation.
	sess.interrupt()
	sess.interrupt()
	sess.interrupt()

	select {
	case got := <-done:
		if got != OutcomeCancelled {
			t.Errorf("Dispatch = %v, want OutcomeCancelled", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not return after interrupt")
	}
	if !strings.Contains(stdout.String(), "Cancelled.") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if sess.State() == StateDispatching {
		t.Error("session stuck in dispatching state after cancel")
	}
}

func TestInterruptWithNoActiveInvocation(t *testing.T) {
	sess, _, _, _ := newTestSession(t, restrict.Mode{})
	// Must not panic or affect later dispatches.
	sess.interrupt()
	if got := sess.Dispatch("status"); got != OutcomeOK {
		t.Errorf("Dispatch after idle interrupt = %v", got)
	}
}

func TestInvocationCancelIdempotent(t *testing.T) {
	calls := 0
	inv := &invocation{cancel: func() { calls++ }, cancellable: true}
	inv.Cancel()
	inv.Cancel()
	if calls != 1 {
		t.Errorf("cancel ran %d times, want 1", calls)
	}

	nc := &invocation{cancel: func() { calls++ }}
	nc.Cancel()
	if calls != 1 {
		t.Error("non-cancellable invocation must ignore Cancel")
	}
}
