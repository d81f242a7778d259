package searcher

// node is one prefix of an inserted keyword. The rune data is needed only
// while building (Finalize walks suffixes through it) and is dropped from
// the frozen structure; queries use length alone.
type node struct {
	letters  []rune
	length   int
	name     string
	terminal bool
}

// edge addresses one trie transition: from a node, on a single rune.
type edge struct {
	from   int
	letter rune
}

// rootID is the id of the root node. Node ids are 1-based and assigned in
// insertion order, so they stay stable across the build.
const rootID = 1

// Builder incrementally assembles the keyword trie. It is append-only:
// keywords cannot be removed, and re-inserting an identical keyword only
// updates its alias.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	nodes  []node
	blacks map[edge]int
	blues  map[int]int
}

// NewBuilder returns an empty Builder holding only the root node.
func NewBuilder() *Builder {
	return &Builder{
		nodes:  []node{{}},
		blacks: make(map[edge]int),
		blues:  make(map[int]int),
	}
}

// Insert adds a keyword to the trie, creating nodes and edges for any
// prefixes not seen before. The final node is marked terminal and named
// alias, or the keyword itself when alias is empty.
func (b *Builder) Insert(keyword, alias string) {
	id := rootID

	var letters []rune
	for _, letter := range keyword {
		letters = append(letters, letter)
		if next, ok := b.blacks[edge{id, letter}]; ok {
			id = next
			continue
		}
		prefix := make([]rune, len(letters))
		copy(prefix, letters)
		b.nodes = append(b.nodes, node{letters: prefix, length: len(prefix)})
		next := len(b.nodes)
		b.blacks[edge{id, letter}] = next
		id = next
	}

	n := &b.nodes[id-1]
	n.terminal = true
	if alias != "" {
		n.name = alias
	} else {
		n.name = keyword
	}
}

// Finalize computes the failure links and freezes the trie into a Searcher.
// The Builder must not be used afterwards.
//
// For each node, proper suffixes of its path are tried longest first; the
// first one that is itself a trie path becomes the node's blue link. A node
// with no such suffix falls back to the root implicitly. Re-walking the
// black edges per suffix is quadratic in total keyword length, but runs
// once at build time.
func (b *Builder) Finalize() *Searcher {
	for id := 1; id <= len(b.nodes); id++ {
		letters := b.nodes[id-1].letters
		b.nodes[id-1].letters = nil

		for start := 1; start < len(letters); start++ {
			if target := b.lookup(letters[start:]); target != 0 {
				b.blues[id] = target
				break
			}
		}
	}

	s := &Searcher{nodes: b.nodes, blacks: b.blacks, blues: b.blues}
	b.nodes = nil
	b.blacks = nil
	b.blues = nil
	return s
}

// lookup walks the black edges from the root and returns the node spelling
// the given runes, or 0 when the path does not exist.
func (b *Builder) lookup(letters []rune) int {
	id := rootID
	for _, letter := range letters {
		next, ok := b.blacks[edge{id, letter}]
		if !ok {
			return 0
		}
		id = next
	}
	return id
}

// Len returns the number of nodes built so far, the root included.
func (b *Builder) Len() int { return len(b.nodes) }
