package shell

import "fmt"

// ANSI codes used in the prompt. Wrapped by promptColor in readline's
// \x01/\x02 ignore markers so cursor math only counts visible characters.
const (
	ansiReset = "\033[0m"
	ansiCyan  = "\033[36m"
	ansiDim   = "\033[2m"
)

// promptColor wraps text in an ANSI code for safe use inside a readline
// prompt string.
func promptColor(text, code string) string {
	if code == "" {
		return text
	}
	return "\x01" + code + "\x02" + text + "\x01" + ansiReset + "\x02"
}

// prompt builds the shell prompt from the current app selection, e.g.
// "beam[My App]> " or plain "beam> " when no app is selected.
func (s *Session) prompt() string {
	name := ""
	if s.cfg.Store != nil {
		if appID := s.cfg.Store.CurrentAppID(); appID != "" {
			name = s.cfg.Store.AppName(appID)
		}
	}
	if name == "" {
		return promptColor("beam", ansiCyan) + "> "
	}
	return promptColor("beam", ansiCyan) + promptColor(fmt.Sprintf("[%s]", name), ansiDim) + "> "
}
