package search

import (
	"sync"
	"unsafe"

	"github.com/oliverans-student/gooseline/board"
)

// Bound classifies how an entry's score relates to the true value of the
// position: Exact is a fully resolved score, Lower came from a beta cutoff
// (the true value is at least this high), Upper came from failing low (the
// true value is at most this high).
type Bound int8

const (
	BoundNone Bound = iota
	BoundExact
	BoundLower
	BoundUpper
)

// DefaultTTSizeMB is the table's default footprint.
const DefaultTTSizeMB = 256

const clusterSize = 4

// Entry is a single transposition table record, sized to fit four per
// cache-line-ish cluster.
type Entry struct {
	Key   uint64
	Move  board.Move
	Score int16
	Depth int8
	Bound Bound
}

// Table is a clustered, always-usefully-replacing transposition table
// shared across every worker in a parallel search. Access is serialized by
// a coarse mutex: spec.md §5 accepts a single global lock over the shared
// tables as a correct, simple starting point, and the table is probed and
// stored far less often than moves are generated, so contention stays low.
type Table struct {
	mu           sync.Mutex
	entries      []Entry
	clusterCount uint64
}

// NewTable allocates a table sized to approximately sizeMB megabytes.
func NewTable(sizeMB int) *Table {
	t := &Table{}
	t.Resize(sizeMB)
	return t
}

// Resize reallocates the table, discarding all stored entries.
func (t *Table) Resize(sizeMB int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entrySize := uint64(unsafe.Sizeof(Entry{}))
	if entrySize == 0 {
		entrySize = 1
	}
	totalBytes := uint64(sizeMB) * 1024 * 1024
	clusterBytes := entrySize * clusterSize
	clusterCount := totalBytes / clusterBytes
	if clusterCount == 0 {
		clusterCount = 1
	}
	t.clusterCount = clusterCount
	t.entries = make([]Entry, clusterCount*clusterSize)
}

// Clear empties every entry without reallocating.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
}

// scoreToTT adjusts a mate score found at ply plies from the root into a
// ply-independent form before storing it: a mate found deeper in the tree
// must be recorded as "closer" so that reusing the entry from a shallower
// ply doesn't understate how many plies away the mate really is.
func scoreToTT(score int32, ply int) int16 {
	if score > Checkmate {
		score += int32(ply)
	} else if score < -Checkmate {
		score -= int32(ply)
	}
	return int16(score)
}

// scoreFromTT reverses scoreToTT when retrieving an entry at a given ply.
func scoreFromTT(score int16, ply int) int32 {
	s := int32(score)
	if s > Checkmate {
		s -= int32(ply)
	} else if s < -Checkmate {
		s += int32(ply)
	}
	return s
}

// Probe looks up hash and returns the raw stored entry (score still in its
// ply-independent storage form — see scoreFromTT) and whether it was found.
func (t *Table) Probe(hash uint64) (entry Entry, found bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.clusterCount == 0 {
		return Entry{}, false
	}
	base := int((hash % t.clusterCount) * clusterSize)
	for i := 0; i < clusterSize; i++ {
		e := t.entries[base+i]
		if e.Key == hash {
			return e, true
		}
	}
	return Entry{}, false
}

// Usable reports whether entry (as returned by Probe) allows an immediate
// cutoff against the given window at the requested depth and ply.
func Usable(entry Entry, found bool, depth int8, alpha, beta int32, ply int) (score int32, ok bool) {
	if !found || entry.Depth < depth {
		return 0, false
	}
	norm := scoreFromTT(entry.Score, ply)
	switch entry.Bound {
	case BoundExact:
		return norm, true
	case BoundUpper:
		if norm <= alpha {
			return norm, true
		}
	case BoundLower:
		if norm >= beta {
			return norm, true
		}
	}
	return 0, false
}

// Store records a search result, replacing an existing entry for the same
// key, then an empty slot, then (if the cluster is full) the shallowest
// entry — the same always-usefully-replace policy used by the teacher,
// which in practice outperformed plain depth-preferred replacement here.
func (t *Table) Store(hash uint64, depth int8, ply int, move board.Move, score int32, bound Bound) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.clusterCount == 0 {
		return
	}
	base := int((hash % t.clusterCount) * clusterSize)

	target := -1
	for i := 0; i < clusterSize; i++ {
		if t.entries[base+i].Key == hash {
			target = base + i
			break
		}
	}
	if target == -1 {
		for i := 0; i < clusterSize; i++ {
			if t.entries[base+i].Key == 0 {
				target = base + i
				break
			}
		}
	}
	if target == -1 {
		target = base
		minDepth := t.entries[base].Depth
		for i := 1; i < clusterSize; i++ {
			if t.entries[base+i].Depth < minDepth {
				minDepth = t.entries[base+i].Depth
				target = base + i
			}
		}
	}

	t.entries[target] = Entry{
		Key:   hash,
		Move:  move,
		Score: scoreToTT(score, ply),
		Depth: depth,
		Bound: bound,
	}
}
