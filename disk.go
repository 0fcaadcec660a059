package dawg

import (
	"errors"
	"fmt"
	"io"
	"math/bits"
	"os"

	"golang.org/x/exp/mmap"
)

/* FILE FORMAT
- 32 bits: magic "DAWG"
- 8 bits: format version (currently 1)
- 8 bits: abits - bits used for a node reference
- 7code: number of words
- 7code: number of nodes
- for each node, children written before their parents, root last:
	- 1 bit: is node terminal?
	- 7code: reachable-word count
	- 7code: number of edges
	- for each edge, sorted by label:
		7code: label length in bytes
		label bytes, 8 bits each
		abits: record index of the child

We define 7code to be an unsigned that can be read the following way:
result = 0
loop {
	data = next 8 bits
	result = result << 7 | data & 0x7f
	if data & 0x80 == 0 break
}

A node's identifier in the file is its record index. Because children
precede their parents, every edge refers to an already-read record, so
shared children come back as the same in-memory node.
*/

const fileMagic = 0x44415747 // "DAWG"

const fileVersion = 1

// ErrCorrupt is returned by Load and Read when the input is not a
// well-formed DAWG file.
var ErrCorrupt = errors.New("dawg: corrupt file")

// Save writes the sealed DAWG to disk. Returns the number of bytes
// written.
func (d *Dawg) Save(filename string) (int64, error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, err
	}

	defer f.Close()
	return d.Write(f)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Write writes the sealed DAWG to an io.Writer. Returns the number of
// bytes written.
func (d *Dawg) Write(wIn io.Writer) (int64, error) {
	d.rlock()
	defer d.runlock()

	if !d.sealed {
		return 0, errors.New("dawg: write before finish")
	}

	// number nodes so that children precede their parents and the
	// root comes last
	var order []*Node
	index := make(map[*Node]int)
	var visit func(*Node)
	visit = func(n *Node) {
		if _, ok := index[n]; ok {
			return
		}
		for _, label := range n.Labels() {
			visit(n.edges[label])
		}
		index[n] = len(order)
		order = append(order, n)
	}
	visit(d.root)

	abits := bits.Len(uint(len(order) - 1))
	if abits == 0 {
		abits = 1
	}

	cw := &countingWriter{w: wIn}
	w := newBitWriter(cw)

	w.WriteBits(fileMagic, 32)
	w.WriteBits(fileVersion, 8)
	w.WriteBits(uint64(abits), 8)
	writeUnsigned(w, uint64(d.root.count))
	writeUnsigned(w, uint64(len(order)))

	for _, n := range order {
		if n.terminal {
			w.WriteBits(1, 1)
		} else {
			w.WriteBits(0, 1)
		}
		writeUnsigned(w, uint64(n.count))
		writeUnsigned(w, uint64(len(n.edges)))

		for _, label := range n.Labels() {
			writeUnsigned(w, uint64(len(label)))
			for i := 0; i < len(label); i++ {
				w.WriteBits(uint64(label[i]), 8)
			}
			if err := w.WriteBits(uint64(index[n.edges[label]]), abits); err != nil {
				return cw.n, err
			}
		}
	}

	if err := w.Flush(); err != nil {
		return cw.n, err
	}

	return cw.n, nil
}

// Load reads a DAWG previously written by Save and rebuilds it in
// memory. The returned DAWG is sealed and query-only.
func Load(filename string) (*Dawg, error) {
	f, err := mmap.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f, 0)
}

// Read rebuilds a DAWG from the given io.ReaderAt, starting at offset.
// The returned DAWG is sealed and query-only.
func Read(f io.ReaderAt, offset int64) (*Dawg, error) {
	r := newBitReader(f, offset)

	if r.ReadBits(32) != fileMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if v := r.ReadBits(8); v != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}

	abits := int(r.ReadBits(8))
	if abits < 1 || abits > 56 {
		return nil, fmt.Errorf("%w: bad node reference width %d", ErrCorrupt, abits)
	}

	numWords := readUnsigned(r)
	numNodes := readUnsigned(r)
	if numNodes == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrCorrupt)
	}

	d := &Dawg{sealed: true}

	nodes := make([]*Node, numNodes)
	for i := range nodes {
		n := d.factory.create()
		n.terminal = r.ReadBits(1) == 1
		n.count = int(readUnsigned(r))

		numEdges := readUnsigned(r)
		for e := uint64(0); e < numEdges; e++ {
			labelLen := readUnsigned(r)
			if labelLen == 0 || labelLen > 64 {
				return nil, fmt.Errorf("%w: bad label length %d", ErrCorrupt, labelLen)
			}

			label := make([]byte, labelLen)
			for b := range label {
				label[b] = byte(r.ReadBits(8))
			}

			child := r.ReadBits(abits)
			if child >= uint64(i) {
				// children always precede their parents
				return nil, fmt.Errorf("%w: forward node reference %d", ErrCorrupt, child)
			}
			n.edges[string(label)] = nodes[child]
		}

		nodes[i] = n
	}

	if r.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, r.err)
	}

	d.root = nodes[numNodes-1]
	if uint64(d.root.count) != numWords {
		return nil, fmt.Errorf("%w: word count mismatch", ErrCorrupt)
	}

	return d, nil
}
