// Package catalog provides a static, immutable index of every beam command
// path, its flags, and its arguments. The index is built once at startup by
// walking the cobra command tree and is treated as read-only for the life of
// the process.
package catalog

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// PathSep joins command path segments into a single catalog key, e.g.
// "channels:publish". The colon form is also accepted as shell input.
const PathSep = ":"

// FlagKind distinguishes boolean switches from flags that take a value.
type FlagKind int

const (
	// FlagBool is a boolean switch (--verbose).
	FlagBool FlagKind = iota
	// FlagValue is an option that consumes a value (--count 10).
	FlagValue
)

// FlagSpec describes a single flag of a command.
type FlagSpec struct {
	Name        string
	Shorthand   string
	Description string
	Kind        FlagKind
	Hidden      bool
}

// Node is one command path in the catalog. Nodes are immutable once loaded.
type Node struct {
	Path     []string
	Use      string
	Short    string
	Hidden   bool
	Runnable bool
	Flags    []FlagSpec

	children []string
}

// Key returns the node's colon-joined catalog key.
func (n *Node) Key() string {
	return strings.Join(n.Path, PathSep)
}

// Description holds the help strings for a command path.
type Description struct {
	Usage string
	Short string
}

// Catalog is the loaded command index.
type Catalog struct {
	nodes    map[string]*Node
	topLevel []string
	devFlags bool
}

// Option configures catalog construction.
type Option func(*Catalog)

// WithDevFlags controls whether hidden flags appear in flag listings.
// Hidden commands are always excluded from listings regardless of this
// setting.
func WithDevFlags(on bool) Option {
	return func(c *Catalog) { c.devFlags = on }
}

// FromCommand walks root and builds the catalog. cobra's own injected "help"
// and "completion" machinery is skipped; the catalog's "completion" entry is
// the explicit command registered by cmd/completion.
func FromCommand(root *cobra.Command, opts ...Option) *Catalog {
	c := &Catalog{nodes: make(map[string]*Node)}
	for _, opt := range opts {
		opt(c)
	}
	for _, child := range root.Commands() {
		if child.Name() == "help" {
			continue
		}
		c.walk(child, nil)
		if !child.Hidden {
			c.topLevel = append(c.topLevel, child.Name())
		}
	}
	sort.Strings(c.topLevel)
	return c
}

func (c *Catalog) walk(cmd *cobra.Command, parent []string) {
	path := append(append([]string(nil), parent...), cmd.Name())
	node := &Node{
		Path:     path,
		Use:      cmd.UseLine(),
		Short:    cmd.Short,
		Hidden:   cmd.Hidden,
		Runnable: cmd.Run != nil || cmd.RunE != nil,
		Flags:    collectFlags(cmd),
	}
	for _, child := range cmd.Commands() {
		if child.Name() == "help" {
			continue
		}
		c.walk(child, path)
		if !child.Hidden {
			node.children = append(node.children, child.Name())
		}
	}
	sort.Strings(node.children)
	c.nodes[node.Key()] = node
}

func collectFlags(cmd *cobra.Command) []FlagSpec {
	var specs []FlagSpec
	seen := make(map[string]bool)
	add := func(f *pflag.Flag) {
		if seen[f.Name] {
			return
		}
		seen[f.Name] = true
		kind := FlagValue
		if f.Value.Type() == "bool" {
			kind = FlagBool
		}
		specs = append(specs, FlagSpec{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Kind:        kind,
			Hidden:      f.Hidden,
		})
	}
	cmd.Flags().VisitAll(add)
	cmd.InheritedFlags().VisitAll(add)
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// TopLevel returns the visible top-level command names plus the virtual
// shell commands "exit" and "help", sorted.
func (c *Catalog) TopLevel() []string {
	names := append(append([]string(nil), c.topLevel...), "exit", "help")
	sort.Strings(names)
	return names
}

// Subcommands returns the visible subcommand names of path, in sorted order.
// An unknown or leaf path yields nil.
func (c *Catalog) Subcommands(path string) []string {
	node, ok := c.nodes[path]
	if !ok {
		return nil
	}
	return append([]string(nil), node.children...)
}

// FlagSpecs returns the flag specs for path. Hidden flags are included only
// when the developer override is active.
func (c *Catalog) FlagSpecs(path string) []FlagSpec {
	node, ok := c.nodes[path]
	if !ok {
		return nil
	}
	var specs []FlagSpec
	for _, f := range node.Flags {
		if f.Hidden && !c.devFlags {
			continue
		}
		specs = append(specs, f)
	}
	return specs
}

// Flags returns the flag tokens for path in both "--name" and "-a" forms.
func (c *Catalog) Flags(path string) []string {
	var tokens []string
	for _, f := range c.FlagSpecs(path) {
		tokens = append(tokens, "--"+f.Name)
		if f.Shorthand != "" {
			tokens = append(tokens, "-"+f.Shorthand)
		}
	}
	return tokens
}

// FlagDescription returns the one-line description for a flag token such as
// "--count" or "-c" at path.
func (c *Catalog) FlagDescription(path, token string) string {
	name := strings.TrimLeft(token, "-")
	for _, f := range c.FlagSpecs(path) {
		if f.Name == name || f.Shorthand == name {
			return f.Description
		}
	}
	return ""
}

// Describe returns usage and description for path. The virtual "exit" and
// "help" commands are described even though they have no catalog node.
func (c *Catalog) Describe(path string) (Description, bool) {
	switch path {
	case "exit":
		return Description{Usage: "exit", Short: "Exit the interactive shell"}, true
	case "help":
		return Description{Usage: "help [command]", Short: "Show help for a command"}, true
	}
	node, ok := c.nodes[path]
	if !ok {
		return Description{}, false
	}
	return Description{Usage: node.Use, Short: node.Short}, true
}

// Lookup returns the node for an exact colon-joined path. Lookup is
// case-sensitive; there is no fuzzy matching at this layer.
func (c *Catalog) Lookup(path string) (*Node, bool) {
	node, ok := c.nodes[path]
	return node, ok
}

// Resolve walks tokens as far as they match catalog nodes and returns the
// deepest matched node together with the remaining tokens. ok is false when
// tokens[0] is not a known top-level command.
func (c *Catalog) Resolve(tokens []string) (node *Node, rest []string, ok bool) {
	for i := range tokens {
		key := strings.Join(tokens[:i+1], PathSep)
		n, found := c.nodes[key]
		if !found {
			break
		}
		node = n
		rest = tokens[i+1:]
	}
	if node == nil {
		return nil, tokens, false
	}
	return node, rest, true
}
