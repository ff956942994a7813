package shell

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/shlex"

	"github.com/soniclabs/beamkit/internal/catalog"
)

// Kind selects what a completion request is asking for.
type Kind int

const (
	// KindCommand completes subcommand names.
	KindCommand Kind = iota
	// KindFlag completes flag tokens, including the leading dashes.
	KindFlag
)

// Candidate is one completion candidate with its help text.
type Candidate struct {
	Text        string
	Description string
}

// listCache memoizes restriction-filtered command and flag listings, keyed
// by serialized mode plus catalog path. SetMode and Refresh invalidate it,
// so a listing is never served stale after a mode change.
type listCache struct {
	mu sync.Mutex
	m  map[string][]Candidate
}

func newListCache() *listCache {
	return &listCache{m: make(map[string][]Candidate)}
}

func (c *listCache) get(key string, build func() []Candidate) []Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cands, ok := c.m[key]; ok {
		return cands
	}
	cands := build()
	c.m[key] = cands
	return cands
}

func (c *listCache) invalidate() {
	c.mu.Lock()
	c.m = make(map[string][]Candidate)
	c.mu.Unlock()
}

// Complete returns the candidates that can follow the already-typed tokens,
// filtered by the partial word and the active restriction mode. It performs
// no I/O: everything is answered from the loaded catalog and rule data, so
// it never blocks the editor loop. Identical inputs yield identical output.
func (s *Session) Complete(tokens []string, partial string, kind Kind) []Candidate {
	tokens = normalize(tokens)
	mode := s.Mode()

	if kind == KindFlag {
		node, rest, ok := s.cfg.Catalog.Resolve(tokens)
		if !ok || s.cfg.Policy.IsRestricted(node.Key(), mode) {
			return nil
		}
		_ = rest // flags may follow positional arguments
		base := s.cache.get(mode.Key()+"|flags|"+node.Key(), func() []Candidate {
			var cands []Candidate
			for _, token := range s.cfg.Catalog.Flags(node.Key()) {
				cands = append(cands, Candidate{
					Text:        token,
					Description: s.cfg.Catalog.FlagDescription(node.Key(), token),
				})
			}
			return cands
		})
		return filterPrefix(base, partial)
	}

	if len(tokens) == 0 {
		base := s.cache.get(mode.Key()+"|top", func() []Candidate {
			var cands []Candidate
			for _, name := range s.cfg.Catalog.TopLevel() {
				if name != "exit" && name != "help" && s.cfg.Policy.IsRestricted(name, mode) {
					continue
				}
				desc, _ := s.cfg.Catalog.Describe(name)
				cands = append(cands, Candidate{Text: name, Description: desc.Short})
			}
			return cands
		})
		return filterPrefix(base, partial)
	}

	node, rest, ok := s.cfg.Catalog.Resolve(tokens)
	if !ok || len(rest) > 0 || s.cfg.Policy.IsRestricted(node.Key(), mode) {
		return nil
	}
	base := s.cache.get(mode.Key()+"|sub|"+node.Key(), func() []Candidate {
		var cands []Candidate
		for _, name := range s.cfg.Catalog.Subcommands(node.Key()) {
			childKey := node.Key() + catalog.PathSep + name
			if s.cfg.Policy.IsRestricted(childKey, mode) {
				continue
			}
			desc, _ := s.cfg.Catalog.Describe(childKey)
			cands = append(cands, Candidate{Text: name, Description: desc.Short})
		}
		return cands
	})
	return filterPrefix(base, partial)
}

// filterPrefix keeps candidates starting with partial. Matching is
// case-sensitive.
func filterPrefix(cands []Candidate, partial string) []Candidate {
	if partial == "" {
		return cands
	}
	var out []Candidate
	for _, c := range cands {
		if strings.HasPrefix(c.Text, partial) {
			out = append(out, c)
		}
	}
	return out
}

// lineCompleter adapts the completion engine to readline's AutoCompleter
// contract: a single match completes the buffer in place; multiple matches
// are listed with their descriptions below the prompt and the buffer is
// left untouched.
type lineCompleter struct {
	session *Session
}

// Do implements readline.AutoCompleter.
func (lc *lineCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	s := lc.session
	segment := string(line[:pos])

	endsWithSpace := len(segment) > 0 &&
		(segment[len(segment)-1] == ' ' || segment[len(segment)-1] == '\t')

	tokens, err := shlex.Split(segment)
	if err != nil {
		// Unclosed quote or similar parse error: no completions.
		return nil, 0
	}

	var context []string
	var partial string
	switch {
	case endsWithSpace || len(tokens) == 0:
		context = tokens
	default:
		context = tokens[:len(tokens)-1]
		partial = tokens[len(tokens)-1]
	}

	kind := KindCommand
	if strings.HasPrefix(partial, "-") {
		kind = KindFlag
	}
	// "help <command>" completes command paths, not help arguments.
	if kind == KindCommand && len(context) > 0 && context[0] == "help" {
		context = context[1:]
	}

	cands := s.Complete(context, partial, kind)
	switch len(cands) {
	case 0:
		return nil, 0
	case 1:
		// In-place completion: readline appends the returned runes after
		// the typed prefix.
		prefix := []rune(partial)
		return [][]rune{[]rune(cands[0].Text)[len(prefix):]}, len(prefix)
	}

	if s.rl != nil {
		renderCandidates(s.rl.Stdout(), cands)
	}
	return nil, 0
}

// renderCandidates prints one candidate per line, name padded, description
// alongside.
func renderCandidates(w io.Writer, cands []Candidate) {
	width := 0
	for _, c := range cands {
		if len(c.Text) > width {
			width = len(c.Text)
		}
	}
	fmt.Fprintln(w)
	for _, c := range cands {
		fmt.Fprintf(w, "  %-*s  %s\n", width, c.Text, c.Description)
	}
}

// normalize expands the colon command form ("channels:publish") into path
// segments. Only the leading token is a command path; flags and arguments
// pass through untouched.
func normalize(tokens []string) []string {
	if len(tokens) == 0 {
		return tokens
	}
	head := tokens[0]
	if strings.HasPrefix(head, "-") || !strings.Contains(head, catalog.PathSep) {
		return tokens
	}
	segments := strings.Split(head, catalog.PathSep)
	return append(segments, tokens[1:]...)
}
