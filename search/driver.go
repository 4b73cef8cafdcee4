package search

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slices"

	"github.com/oliverans-student/gooseline/board"
)

// Limits bounds a single search: callers set either a Depth cap, a fixed
// MoveTime, or a clock (Time/Inc) from which a per-move budget is derived,
// matching the handful of ways a text protocol front end can ask for a
// move. Infinite searches run until Stop is requested externally.
type Limits struct {
	Depth     int8
	QDepth    int8
	MoveTime  time.Duration
	WhiteTime time.Duration
	BlackTime time.Duration
	WhiteInc  time.Duration
	BlackInc  time.Duration
	Infinite  bool
	Threads   int
}

// DefaultQDepth is the quiescence depth used when a caller leaves
// Limits.QDepth unset, matching the original engine's own default
// (findBestMove's quiescenceDepth = 10 in search.cpp/pig_engine.cpp).
const DefaultQDepth int8 = 10

// Info reports one completed iterative-deepening pass, in the shape a
// protocol front end prints as an "info ..." line.
type Info struct {
	Depth int
	Score int32
	Nodes uint64
	Time  time.Duration
	PV    PVLine
}

// deadline is the wall-clock budget for a search: soft governs when the
// iterative loop stops starting new depths, hard is the point at which an
// in-progress search aborts outright.
type deadline struct {
	soft, hard time.Time
	infinite   bool
}

func newDeadline(lim Limits, pos *board.Board) deadline {
	if lim.Infinite {
		return deadline{infinite: true}
	}
	if lim.MoveTime > 0 {
		now := time.Now()
		return deadline{soft: now.Add(lim.MoveTime), hard: now.Add(lim.MoveTime)}
	}

	white := pos.SideToMove() == board.White
	remaining, inc := lim.BlackTime, lim.BlackInc
	if white {
		remaining, inc = lim.WhiteTime, lim.WhiteInc
	}
	if remaining <= 0 {
		// No clock information at all (e.g. depth-only search): treat as
		// an effectively unbounded soft budget; Depth still caps the loop.
		return deadline{infinite: true}
	}

	const overhead = 30 * time.Millisecond
	const minMove = 5 * time.Millisecond
	const maxFraction = 0.7

	movesLeft := 30
	budget := remaining/time.Duration(movesLeft) + inc
	if budget > time.Duration(float64(remaining)*maxFraction) {
		budget = time.Duration(float64(remaining) * maxFraction)
	}
	if budget > remaining-overhead {
		budget = remaining - overhead
	}
	if budget < minMove {
		budget = minMove
	}

	now := time.Now()
	return deadline{soft: now.Add(budget), hard: now.Add(budget * 3)}
}

func (d deadline) exceeded() bool {
	if d.infinite {
		return false
	}
	return !d.hard.IsZero() && time.Now().After(d.hard)
}

func (d deadline) softExceeded() bool {
	if d.infinite {
		return false
	}
	return !d.soft.IsZero() && time.Now().After(d.soft)
}

// shared holds every piece of state the parallel workers of one search
// access concurrently: the transposition/killer/history/counter tables
// (each independently lockable, per spec.md §5's "single coarse mutex per
// shared table is acceptable"), the node counter, the best-root bookkeeping,
// and the stop signal.
type shared struct {
	tt       *Table
	killers  *KillerTable
	history  *HistoryTable
	counters *CounterTable

	deadline deadline
	stop     int32  // atomic
	extStop  *int32 // atomic; Searcher.stop, polled alongside the local flag

	mu        sync.Mutex
	nodes     uint64
	bestScore int32
	bestMove  board.Move
	bestPV    PVLine
}

func (s *shared) requestStop() { atomic.StoreInt32(&s.stop, 1) }
func (s *shared) isStopped() bool {
	return atomic.LoadInt32(&s.stop) != 0 || (s.extStop != nil && atomic.LoadInt32(s.extStop) != 0)
}
func (s *shared) addNodes(n uint64) {
	s.mu.Lock()
	s.nodes += n
	s.mu.Unlock()
}
func (s *shared) totalNodes() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes
}

// Searcher owns the tables that persist across moves within one game:
// recreating them on every search would throw away everything the
// transposition/history tables learned from prior positions.
type Searcher struct {
	tt       *Table
	killers  *KillerTable
	history  *HistoryTable
	counters *CounterTable
	stop     int32 // atomic; set by Stop, cleared when FindBestMove starts, polled during the search via shared.isStopped
}

// NewSearcher allocates a Searcher with a transposition table sized to
// sizeMB megabytes.
func NewSearcher(sizeMB int) *Searcher {
	return &Searcher{
		tt:       NewTable(sizeMB),
		killers:  &KillerTable{},
		history:  &HistoryTable{},
		counters: &CounterTable{},
	}
}

// Stop requests that any in-progress FindBestMove return as soon as
// possible, the way a protocol front end's "stop" command does.
func (s *Searcher) Stop() { atomic.StoreInt32(&s.stop, 1) }

// NewGame clears every table: a new game shares nothing with the last one.
func (s *Searcher) NewGame() {
	s.tt.Clear()
	*s.killers = KillerTable{}
	*s.history = HistoryTable{}
	*s.counters = CounterTable{}
}

// rootMove pairs a legal root move with the score it obtained at the
// previous completed depth, the sort key for move ordering between
// iterations.
type rootMove struct {
	move  board.Move
	score int32
}

// FindBestMove runs iterative deepening from root, parallelized across
// Threads workers that dynamically claim root moves out of a shared queue
// at each depth, and reports progress via onInfo after every completed
// iteration. It returns the best move found by the time the search stops,
// by depth limit, time limit, or external Stop.
func (s *Searcher) FindBestMove(root *board.Board, gameHistory []uint64, lim Limits, onInfo func(Info)) board.Move {
	threads := lim.Threads
	if threads < 1 {
		threads = 1
	}
	qDepth := lim.QDepth
	if qDepth <= 0 {
		qDepth = DefaultQDepth
	}

	atomic.StoreInt32(&s.stop, 0)
	sh := &shared{
		tt: s.tt, killers: s.killers, history: s.history, counters: s.counters,
		deadline: newDeadline(lim, root),
		extStop:  &s.stop,
	}

	legal := root.LegalMoves()
	if len(legal) == 0 {
		return 0
	}
	roots := make([]rootMove, len(legal))
	for i, m := range legal {
		roots[i] = rootMove{move: m}
	}
	if len(roots) == 1 {
		return roots[0].move // spec.md §4.5's single-legal-move short circuit
	}

	maxDepth := int8(MaxPly - 1)
	if lim.Depth > 0 {
		maxDepth = lim.Depth
	}

	var bestMove board.Move
	var bestPV PVLine
	var prevScore int32
	const aspirationWindow int32 = 35
	start := time.Now()

	for depth := int8(1); depth <= maxDepth; depth++ {
		if depth > 1 && !lim.Infinite && sh.deadline.softExceeded() {
			break
		}

		alpha, beta := -MaxScore, MaxScore
		window := aspirationWindow
		if depth > 1 {
			alpha = prevScore - window
			beta = prevScore + window
		}

		var score int32
		var pv PVLine
		var ok bool
		for {
			score, pv, ok = s.searchRootParallel(root, gameHistory, roots, sh, alpha, beta, depth, threads, qDepth)
			if !ok || sh.isStopped() {
				break
			}
			if score <= alpha {
				window *= 2
				alpha = score - window
				if alpha < -MaxScore {
					alpha = -MaxScore
				}
				continue
			}
			if score >= beta {
				window *= 2
				beta = score + window
				if beta > MaxScore {
					beta = MaxScore
				}
				continue
			}
			break
		}

		if sh.isStopped() || !ok {
			break
		}

		prevScore = score
		bestMove = pv.BestMove()
		bestPV = pv.Clone()

		// Re-sort root moves by this iteration's scores so the next
		// depth's workers try the most promising candidates first.
		slices.SortFunc(roots, func(a, b rootMove) bool { return a.score > b.score })

		if onInfo != nil {
			onInfo(Info{Depth: int(depth), Score: score, Nodes: sh.totalNodes(), Time: time.Since(start), PV: bestPV})
		}

		if isMateScore(score) {
			break
		}
	}

	if bestMove == 0 {
		bestMove = roots[0].move
	}
	return bestMove
}

// searchRootParallel runs one full iterative-deepening depth across the
// worker pool: each worker repeatedly claims the next unclaimed root move
// from a shared, mutex-guarded index (so faster workers naturally pick up
// more moves than slower ones — the "lazy" part of lazy-SMP-lite root
// splitting) and searches it to depth-1 with its own local position copy,
// PV buffer, and extension budget. The first move at each depth searches
// the full window; every move after it is probed with a null window first
// and only re-searched at full width if it beats the current best score.
func (s *Searcher) searchRootParallel(root *board.Board, gameHistory []uint64, roots []rootMove, sh *shared, alpha, beta int32, depth int8, threads int, qDepth int8) (int32, PVLine, bool) {
	var nextIndex int32
	var wg sync.WaitGroup
	var mu sync.Mutex
	bestScore := -MaxScore - 1
	var bestPV PVLine
	anySearched := false
	currentAlpha := alpha

	runWorker := func(id int) {
		defer wg.Done()
		w := &worker{id: id, shared: sh, order: &orderTables{killers: sh.killers, history: sh.history, counters: sh.counters}, extBudget: extensionBudgetInit, qDepth: qDepth}
		base := append(append([]uint64(nil), gameHistory...), root.Hash())

		for {
			idx := atomic.AddInt32(&nextIndex, 1) - 1
			if int(idx) >= len(roots) || sh.isStopped() {
				break
			}
			move := roots[idx].move
			pos := *root
			pos.Make(move)
			w.history = append(append([]uint64(nil), base...), pos.Hash())

			mu.Lock()
			windowAlpha := currentAlpha
			mu.Unlock()

			var pv PVLine
			var score int32
			if idx == 0 {
				score = -w.negamax(&pos, -beta, -windowAlpha, depth-1, 1, &pv, move, false, false, 0)
			} else {
				score = -w.negamax(&pos, -(windowAlpha + 1), -windowAlpha, depth-1, 1, &pv, move, false, false, 0)
				if score > windowAlpha && !w.stopped {
					score = -w.negamax(&pos, -beta, -windowAlpha, depth-1, 1, &pv, move, false, false, 0)
				}
			}

			if w.stopped {
				break
			}

			mu.Lock()
			roots[idx].score = score
			anySearched = true
			if score > bestScore {
				bestScore = score
				var full PVLine
				full.Update(move, pv)
				bestPV = full.Clone()
				if score > currentAlpha {
					currentAlpha = score
				}
			}
			mu.Unlock()
		}
		sh.addNodes(w.nodes)
	}

	wg.Add(threads)
	for t := 0; t < threads; t++ {
		go runWorker(t)
	}
	wg.Wait()

	if sh.isStopped() || !anySearched {
		return 0, PVLine{}, false
	}
	return bestScore, bestPV, true
}

// FormatScore renders a score the way a text protocol's "info" line does:
// "mate N" once it crosses the mate threshold, otherwise "cp N".
func FormatScore(score int32) string {
	if score >= Checkmate {
		plies := MaxScore - score
		return fmt.Sprintf("mate %d", (plies+1)/2)
	}
	if score <= -Checkmate {
		plies := MaxScore + score
		return fmt.Sprintf("mate %d", -((plies + 1) / 2))
	}
	return fmt.Sprintf("cp %d", score)
}
