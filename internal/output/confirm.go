package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Confirm asks a yes/no question on out and reads the answer from in.
// The answer defaults to no: only "y" or "yes" (case-insensitive) accept.
//
// When in is a real terminal its state is captured before the prompt and
// restored afterwards on every exit path, so a confirmation raised in the
// middle of an interactive session cannot leave the terminal in raw mode.
func Confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if f, ok := in.(*os.File); ok {
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			if state, err := term.GetState(fd); err == nil {
				defer term.Restore(fd, state)
			}
		}
	}

	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// ConfirmOrForce short-circuits to yes when force is set, for commands with
// a --force flag.
func ConfirmOrForce(force bool, prompt string) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(os.Stdin, os.Stdout, prompt)
}
