package dawg

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// ErrOutOfOrderInsert is returned by Insert when the word is
// lexicographically smaller than the previously inserted one. The
// build is unusable afterwards.
var ErrOutOfOrderInsert = errors.New("dawg: words must be inserted in sorted order")

// ErrInsertAfterFinish is returned by Insert once Finish has sealed
// the DAWG.
var ErrInsertAfterFinish = errors.New("dawg: insert into a finished dawg")

// pendingEdge is one entry of the pending trail: an edge created for
// the most recent word whose child has not yet been checked against
// the minimized nodes. The trail is always the linear suffix path of
// the last inserted word.
type pendingEdge struct {
	parent *Node
	label  string
	child  *Node
}

// EnumerationResult is returned by the enumeration function to
// indicate whether enumeration should continue below this prefix or
// stop altogether.
type EnumerationResult = int

const (
	// Continue enumerating all words with this prefix
	Continue EnumerationResult = iota

	// Skip will skip all words with this prefix
	Skip

	// Stop will immediately stop enumerating words
	Stop
)

// EnumFn is called by Enumerate with every prefix reachable in the
// graph. word holds the prefix one grapheme per element and is reused
// between calls; copy it if it must outlive the callback.
type EnumFn = func(word []string, terminal bool) EnumerationResult

// Dawg is a Directed Acyclic Word Graph being built or queried. Create
// one with New, Insert words in sorted order, then Finish before
// relying on counts or concurrent reads.
type Dawg struct {
	mu *sync.RWMutex

	root    *Node
	factory nodeFactory

	// these are erased by Finish
	minimized map[string]*Node
	pending   []pendingEdge
	previous  string

	sealed bool
}

// Option configures a Dawg created by New.
type Option func(*Dawg)

// Synchronized makes every operation on the Dawg take an internal
// read-write lock, so the build may be driven while other goroutines
// query. The default build has no locking and relies on the
// single-writer build phase; its sealed graph is still safe for
// concurrent readers. The option changes thread-safety only, never
// results.
func Synchronized() Option {
	return func(d *Dawg) {
		d.mu = &sync.RWMutex{}
	}
}

// New creates an empty DAWG.
func New(opts ...Option) *Dawg {
	d := &Dawg{
		minimized: make(map[string]*Node),
	}
	d.root = d.factory.create()

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Dawg) lock() {
	if d.mu != nil {
		d.mu.Lock()
	}
}

func (d *Dawg) unlock() {
	if d.mu != nil {
		d.mu.Unlock()
	}
}

func (d *Dawg) rlock() {
	if d.mu != nil {
		d.mu.RLock()
	}
}

func (d *Dawg) runlock() {
	if d.mu != nil {
		d.mu.RUnlock()
	}
}

// Insert adds a word. Words must arrive sorted under code-point order;
// a smaller word fails with ErrOutOfOrderInsert. Repeating the
// previous word is allowed and collapses. Inserting into a sealed DAWG
// fails with ErrInsertAfterFinish.
func (d *Dawg) Insert(word string) error {
	d.lock()
	defer d.unlock()

	if d.sealed {
		return fmt.Errorf("%w: %q", ErrInsertAfterFinish, word)
	}
	if word < d.previous {
		return fmt.Errorf("%w: %q after %q", ErrOutOfOrderInsert, word, d.previous)
	}

	letters := graphemes(word)
	prev := graphemes(d.previous)

	// fold the part of the previous word's suffix path that this word
	// does not share
	common := commonPrefixLen(letters, prev)
	d.minimize(common)

	// extend from mid-graph: the deepest still-pending node, or the
	// root when the trail is empty
	node := d.root
	if len(d.pending) > 0 {
		node = d.pending[len(d.pending)-1].child
	}

	for _, letter := range letters[common:] {
		child := d.factory.create()
		node.edges[letter] = child
		d.pending = append(d.pending, pendingEdge{parent: node, label: letter, child: child})
		node = child
	}

	node.terminal = true
	d.previous = word
	return nil
}

// minimize folds trail entries from the tail down to index downTo.
// Processing tail-first means every child's subtree is already in
// canonical shape when its parent's form is computed.
func (d *Dawg) minimize(downTo int) {
	for i := len(d.pending) - 1; i >= downTo; i-- {
		entry := d.pending[i]
		name := entry.child.canonical()

		if canon, ok := d.minimized[name]; ok {
			// an equivalent subtree exists; point the parent at it and
			// abandon the duplicate
			entry.parent.edges[entry.label] = canon
		} else {
			d.minimized[name] = entry.child
		}
	}

	d.pending = d.pending[:downTo]
}

// Finish seals the DAWG: the remaining trail is folded, reachable-word
// counts are filled in, and build-only state is released. Further
// Inserts fail. Calling Finish again is a no-op.
func (d *Dawg) Finish() {
	d.lock()
	defer d.unlock()

	if d.sealed {
		return
	}

	d.minimize(0)
	d.root.numReachable()

	d.minimized = nil
	d.pending = nil
	d.previous = ""
	d.sealed = true
}

// NumWords returns the number of distinct words stored. It is only
// meaningful on a sealed DAWG.
func (d *Dawg) NumWords() int {
	d.rlock()
	defer d.runlock()
	return d.root.count
}

// Root returns the root node handle.
func (d *Dawg) Root() *Node {
	d.rlock()
	defer d.runlock()
	return d.root
}

// find walks one edge per grapheme of word starting at the root and
// returns the node reached. Queries that are not valid UTF-8 cannot be
// segmented and are misses.
func (d *Dawg) find(word string, caseSensitive bool) *Node {
	if !utf8.ValidString(word) {
		return nil
	}

	var upper cases.Caser
	if !caseSensitive {
		upper = upperCaser()
	}

	node := d.root
	for _, letter := range graphemes(word) {
		var next *Node
		if caseSensitive {
			next = node.edges[letter]
		} else {
			// follow the stored edge whose label uppercases to the
			// query grapheme, whatever case it was inserted in
			want := upper.String(letter)
			for _, label := range node.Labels() {
				if upper.String(label) == want {
					next = node.edges[label]
					break
				}
			}
		}

		if next == nil {
			return nil
		}
		node = next
	}

	return node
}

// IsWord reports whether word is stored in the DAWG. On a hit it
// returns the query in its original case. With caseSensitive false,
// graphemes match when their uppercased forms are equal.
func (d *Dawg) IsWord(word string, caseSensitive bool) (string, bool) {
	d.rlock()
	defer d.runlock()

	node := d.find(word, caseSensitive)
	if node == nil || !node.terminal {
		return "", false
	}
	return word, true
}

// Lookup returns the node reached by walking word from the root, or
// nil if no stored word begins with it. The node need not be terminal;
// a non-nil result only means the prefix exists.
func (d *Dawg) Lookup(word string, caseSensitive bool) *Node {
	d.rlock()
	defer d.runlock()
	return d.find(word, caseSensitive)
}

// FindAnagrams returns every stored word that is an arrangement of
// exactly the given letters. Matching is case-sensitive; normalize
// before calling if needed. The result is deduplicated and sorted.
func (d *Dawg) FindAnagrams(letters string) []string {
	d.rlock()
	defer d.runlock()

	found := make(map[string]struct{})
	d.anagrams(nil, graphemes(letters), found)
	return sortedKeys(found)
}

// anagrams tries every ordering of remaining appended to current and
// records the orderings that are stored words. Brute force over the
// multiset; the graph is only consulted for the final membership test.
func (d *Dawg) anagrams(current []string, remaining []string, found map[string]struct{}) {
	if len(remaining) == 0 {
		word := strings.Join(current, "")
		if node := d.find(word, true); node != nil && node.terminal {
			found[word] = struct{}{}
		}
		return
	}

	for i := range remaining {
		rest := make([]string, 0, len(remaining)-1)
		rest = append(rest, remaining[:i]...)
		rest = append(rest, remaining[i+1:]...)
		d.anagrams(append(current, remaining[i]), rest, found)
	}
}

// ExtendWith returns every stored word that can be spelled from the
// combined letters of pool and anchor and contains anchor as a
// contiguous substring. Unlike FindAnagrams, words may use any subset
// of the letters, and the search descends the graph so dead branches
// are cut early. The result is deduplicated and sorted.
func (d *Dawg) ExtendWith(anchor, pool string) []string {
	d.rlock()
	defer d.runlock()

	available := make(map[string]int)
	for _, letter := range graphemes(pool) {
		available[letter]++
	}
	for _, letter := range graphemes(anchor) {
		available[letter]++
	}

	found := make(map[string]struct{})
	d.extend(d.root, nil, available, found)

	if anchor != "" {
		for word := range found {
			if !strings.Contains(word, anchor) {
				delete(found, word)
			}
		}
	}

	return sortedKeys(found)
}

// extend descends the graph, spending one letter from the pool per
// edge, and records every terminal reached.
func (d *Dawg) extend(node *Node, prefix []string, pool map[string]int, found map[string]struct{}) {
	if node.terminal {
		found[strings.Join(prefix, "")] = struct{}{}
	}

	for _, label := range node.Labels() {
		if pool[label] == 0 {
			continue
		}
		pool[label]--
		d.extend(node.edges[label], append(prefix, label), pool, found)
		pool[label]++
	}
}

// Enumerate calls fn with every prefix stored in the graph, in sorted
// label order. Return Continue to descend, Skip to skip everything
// below the prefix, or Stop to end the enumeration.
func (d *Dawg) Enumerate(fn EnumFn) {
	d.rlock()
	defer d.runlock()
	d.enumerate(d.root, nil, fn)
}

func (d *Dawg) enumerate(node *Node, word []string, fn EnumFn) EnumerationResult {
	result := fn(word, node.terminal)
	if result != Continue {
		return result
	}

	l := len(word)
	word = append(word, "")
	for _, label := range node.Labels() {
		word[l] = label
		result = d.enumerate(node.edges[label], word, fn)
		if result == Stop {
			break
		}
	}

	return result
}

// Dump writes a listing of every node and edge to w, one node per
// line, for debugging.
func (d *Dawg) Dump(w io.Writer) {
	d.rlock()
	defer d.runlock()

	seen := make(map[*Node]bool)
	d.dumpNode(w, d.root, seen)
}

func (d *Dawg) dumpNode(w io.Writer, node *Node, seen map[*Node]bool) {
	if seen[node] {
		return
	}
	seen[node] = true

	fmt.Fprintf(w, "node %d terminal=%v count=%d", node.id, node.terminal, node.count)
	for _, label := range node.Labels() {
		fmt.Fprintf(w, " %s->%d", label, node.edges[label].id)
	}
	fmt.Fprintln(w)

	for _, label := range node.Labels() {
		d.dumpNode(w, node.edges[label], seen)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for word := range set {
		out = append(out, word)
	}
	sort.Strings(out)
	return out
}
