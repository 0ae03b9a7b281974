// Package trie stores path prefixes split into segments so that a file can
// be tested against every ignored directory in one walk.
package trie

import (
	"path/filepath"
	"sort"
	"strings"
)

// Nodes live in a single arena slice and reference their children by
// index rather than by pointer.

// NodeIndex represents the index of a trie node.
type NodeIndex int

// Arena is a memory pool that stores all trie nodes.
type Arena struct {
	nodes []arenaNode
}

type arenaNode struct {
	// children maps a path segment to the child node.
	children map[string]NodeIndex
	// isEnd marks the last segment of an inserted sequence.
	isEnd bool
}

// NewArena creates a new arena holding only the root node.
func NewArena() *Arena {
	arena := &Arena{
		nodes: make([]arenaNode, 0, 64),
	}
	arena.nodes = append(arena.nodes, arenaNode{children: make(map[string]NodeIndex)})
	return arena
}

func (a *Arena) newNode() NodeIndex {
	idx := NodeIndex(len(a.nodes))
	a.nodes = append(a.nodes, arenaNode{children: make(map[string]NodeIndex)})
	return idx
}

// Insert adds a sequence of segments.
func (a *Arena) Insert(sequence []string) {
	current := NodeIndex(0)
	for _, part := range sequence {
		childIdx, exists := a.nodes[current].children[part]
		if !exists {
			childIdx = a.newNode()
			a.nodes[current].children[part] = childIdx
		}
		current = childIdx
	}
	a.nodes[current].isEnd = true
}

// HasPrefixOf reports whether some inserted sequence is a prefix of
// sequence, including sequence itself.
func (a *Arena) HasPrefixOf(sequence []string) bool {
	current := NodeIndex(0)
	if a.nodes[current].isEnd {
		return true
	}
	for _, part := range sequence {
		next, ok := a.nodes[current].children[part]
		if !ok {
			return false
		}
		if a.nodes[next].isEnd {
			return true
		}
		current = next
	}
	return false
}

// DebugString renders the trie as nested segments, '*' marking ends.
func (a *Arena) DebugString() string {
	return a.debugStringNode(NodeIndex(0))
}

func (a *Arena) debugStringNode(idx NodeIndex) string {
	node := a.nodes[idx]
	var sb strings.Builder
	if node.isEnd {
		sb.WriteString("*")
	}

	keys := make([]string, 0, len(node.children))
	for key := range node.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sb.WriteString(key)
		sb.WriteString("(")
		sb.WriteString(a.debugStringNode(node.children[key]))
		sb.WriteString(")")
	}
	return sb.String()
}

// Trie is a set of filesystem path prefixes.
type Trie struct {
	arena *Arena
	size  int
}

// New returns an empty Trie.
func New() *Trie {
	return &Trie{arena: NewArena()}
}

// InsertPath adds path as a prefix.
func (t *Trie) InsertPath(path string) {
	t.arena.Insert(Segments(path))
	t.size++
}

// ContainsPrefixOf reports whether path equals or lies under an inserted
// path.
func (t *Trie) ContainsPrefixOf(path string) bool {
	if t.size == 0 {
		return false
	}
	return t.arena.HasPrefixOf(Segments(path))
}

// Len returns the number of inserted paths.
func (t *Trie) Len() int { return t.size }

func (t *Trie) DebugString() string {
	return t.arena.DebugString()
}

// Segments splits a cleaned path on the separator. A leading separator
// becomes an empty first segment so absolute and relative paths differ.
func Segments(path string) []string {
	clean := filepath.ToSlash(filepath.Clean(path))
	if clean == "." {
		return nil
	}
	return strings.Split(clean, "/")
}
