package solver

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/sbanks1000/rota-scheduler/pkg/types"
)

// Search termination signals, internal to the engine.
var (
	errBudgetExhausted = errors.New("search budget exhausted")
	errCancelled       = errors.New("search cancelled")
	errBoundReached    = errors.New("incumbent reached the optimality bound")
)

// incumbent is the best feasible assignment found so far
type incumbent struct {
	assigned []bitset
	score    types.ScoreBreakdown
}

// failureStat aggregates contradictions hit during search, per constraint.
// The packager distils these into the best-effort unsatisfiable core.
type failureStat struct {
	count   int64
	slots   map[int]bool
	doctors map[string]bool
}

// searcher runs depth-first branch-and-bound over slot/doctor decisions. One
// searcher serves exactly one run; nothing here is shared between runs.
type searcher struct {
	st      *searchState
	rng     *rand.Rand
	budget  types.SearchBudget
	ctx     context.Context
	started time.Time

	nodes      int64
	backtracks int64

	best       *incumbent
	incumbents int
	rootBound  float64

	failures map[string]*failureStat
}

func newSearcher(ctx context.Context, st *searchState, budget types.SearchBudget, seed int64) *searcher {
	return &searcher{
		st:       st,
		rng:      rand.New(rand.NewSource(seed)),
		budget:   budget,
		ctx:      ctx,
		started:  time.Now(),
		failures: make(map[string]*failureStat),
	}
}

// run explores the search space and returns nil when it was exhausted (the
// incumbent, if any, is then optimal), or the termination signal that stopped
// it early.
func (s *searcher) run() error {
	s.rootBound = s.upperBound()
	err := s.search()
	if err == errBoundReached {
		return nil
	}
	return err
}

func (s *searcher) search() error {
	if err := s.enterNode(); err != nil {
		return err
	}

	slot := s.selectSlot()
	if slot == -1 {
		s.onLeaf()
		if s.best != nil && s.best.score.Total >= s.rootBound {
			return errBoundReached
		}
		return nil
	}

	// Branch-and-bound cut: this subtree cannot beat the incumbent.
	if s.best != nil && s.upperBound() <= s.best.score.Total {
		return nil
	}

	for _, doc := range s.orderCandidates(slot) {
		s.st.pushFrame()
		if c := s.st.assign(slot, doc); c != nil {
			s.recordFailure(c)
			s.st.popFrame()
			s.backtracks++
			continue
		}

		err := s.search()
		s.st.popFrame()
		if err != nil {
			return err
		}
	}

	s.backtracks++
	return nil
}

// enterNode applies the per-node budget and cancellation checks. Cancellation
// is cooperative and checked at every node boundary.
func (s *searcher) enterNode() error {
	s.nodes++

	if s.ctx.Err() != nil {
		return errCancelled
	}
	if s.budget.MaxNodes > 0 && s.nodes > s.budget.MaxNodes {
		return errBudgetExhausted
	}
	if s.budget.TimeLimit > 0 && s.nodes%64 == 0 && time.Since(s.started) > s.budget.TimeLimit {
		return errBudgetExhausted
	}
	return nil
}

// selectSlot picks the open slot with the smallest remaining candidate
// domain (most-constrained-variable), tie-broken by earliest slot index.
// Returns -1 when every slot is filled.
func (s *searcher) selectSlot() int {
	best := -1
	bestSize := 0
	for slot := 0; slot < s.st.nSlots; slot++ {
		if !s.st.slotOpen(slot) {
			continue
		}
		size := s.st.candidates[slot].count()
		if best == -1 || size < bestSize {
			best = slot
			bestSize = size
		}
	}
	return best
}

// orderCandidates returns the slot's candidates sorted by descending
// soft-score bias; candidates with equal bias are ordered by the seeded RNG so
// a fixed seed replays the identical search.
func (s *searcher) orderCandidates(slot int) []int {
	type ranked struct {
		doc  int
		bias float64
		tie  int64
	}
	var cands []ranked
	s.st.candidates[slot].forEach(func(d int) {
		cands = append(cands, ranked{doc: d, bias: s.candidateBias(slot, d), tie: s.rng.Int63()})
	})

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].bias != cands[j].bias {
			return cands[i].bias > cands[j].bias
		}
		return cands[i].tie < cands[j].tie
	})

	docs := make([]int, len(cands))
	for i, c := range cands {
		docs[i] = c.doc
	}
	return docs
}

// onLeaf handles a complete assignment: every slot filled to target. Doctors
// still short of their band minimum make the leaf a dead end; otherwise the
// leaf is scored and kept when it beats the incumbent.
func (s *searcher) onLeaf() {
	m := s.st.model
	for d := 0; d < s.st.nDocs; d++ {
		if s.st.docCount[d] < m.Bands[d].Min {
			s.recordFailure(&contradiction{
				ConstraintID: string(ConstraintShiftBand) + "/" + m.Doctors[d].ID,
				SlotIndex:    -1,
				DoctorID:     m.Doctors[d].ID,
			})
			return
		}
	}

	score := scoreAssignment(m, s.st.assigned)
	if s.best == nil || score.Total > s.best.score.Total {
		snapshot := make([]bitset, s.st.nSlots)
		for slot := range snapshot {
			snapshot[slot] = s.st.assigned[slot].clone()
		}
		s.best = &incumbent{assigned: snapshot, score: score}
		s.incumbents++
	}
}

func (s *searcher) recordFailure(c *contradiction) {
	stat := s.failures[c.ConstraintID]
	if stat == nil {
		stat = &failureStat{slots: make(map[int]bool), doctors: make(map[string]bool)}
		s.failures[c.ConstraintID] = stat
	}
	stat.count++
	if c.SlotIndex >= 0 {
		stat.slots[c.SlotIndex] = true
	}
	if c.DoctorID != "" {
		stat.doctors[c.DoctorID] = true
	}
}

func (s *searcher) stats(cancelled, exhausted bool) types.SolverStats {
	return types.SolverStats{
		NodesExplored:    s.nodes,
		Backtracks:       s.backtracks,
		IncumbentsFound:  s.incumbents,
		Elapsed:          time.Since(s.started),
		OptimalityProven: exhausted && !cancelled,
		Cancelled:        cancelled,
	}
}
