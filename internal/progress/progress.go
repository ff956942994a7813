// Package progress provides terminal progress reporting for long-running
// commands. All output goes to stderr so stdout stays pipeable.
package progress

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Bar renders an ASCII progress bar with a live throughput figure.
type Bar struct {
	Total   int
	Current int
	Label   string
	Width   int
	Enabled bool

	mu      sync.Mutex
	started time.Time
}

// New creates a progress bar. Disabled when stderr is not a terminal or
// BEAM_NO_PROGRESS=1 is set.
func New(label string, total int) *Bar {
	return &Bar{
		Total:   total,
		Label:   label,
		Width:   30,
		Enabled: shouldEnable(),
		started: time.Now(),
	}
}

// Increment advances the bar by n and redraws.
func (b *Bar) Increment(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Current += n
	if b.Current > b.Total {
		b.Current = b.Total
	}
	b.render()
}

// Finish clears the bar and prints a summary line.
func (b *Bar) Finish(summary string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.Enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "\r\033[K✓ %s\n", summary)
}

// Rate returns the observed throughput in units per second.
func (b *Bar) Rate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := time.Since(b.started).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(b.Current) / elapsed
}

func (b *Bar) render() {
	if !b.Enabled {
		return
	}

	pct := 0.0
	if b.Total > 0 {
		pct = float64(b.Current) / float64(b.Total)
	}
	filled := int(pct * float64(b.Width))
	if filled > b.Width {
		filled = b.Width
	}

	elapsed := time.Since(b.started).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(b.Current) / elapsed
	}

	bar := strings.Repeat("=", filled) + strings.Repeat(" ", b.Width-filled)
	fmt.Fprintf(os.Stderr, "\r\033[K%s [%s] %d/%d  %.0f msg/s",
		b.Label, bar, b.Current, b.Total, rate)
}

// Spinner shows activity for operations without a known total.
type Spinner struct {
	Label   string
	Enabled bool

	mu      sync.Mutex
	done    chan struct{}
	stopped bool
}

// NewSpinner creates a spinner.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		Label:   label,
		Enabled: shouldEnable(),
		done:    make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	if !s.Enabled {
		return
	}

	s.mu.Lock()
	s.stopped = false
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		frames := []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}
		i := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if !s.stopped {
					fmt.Fprintf(os.Stderr, "\r\033[K%c %s", frames[i%len(frames)], s.Label)
					i++
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Stop stops the spinner and prints a result line.
func (s *Spinner) Stop(result string) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	select {
	case <-s.done:
	default:
		close(s.done)
	}

	if s.Enabled {
		fmt.Fprintf(os.Stderr, "\r\033[K✓ %s\n", result)
	}
}

func shouldEnable() bool {
	if os.Getenv("BEAM_NO_PROGRESS") == "1" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
