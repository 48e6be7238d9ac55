package solver

import "math/bits"

// bitset is a fixed-capacity set of small integers (doctor or slot indices),
// backed by machine words. Zero-based, unlike date-keyed lookups elsewhere.
type bitset struct {
	n     int
	words []uint64
}

func newBitset(n int) bitset {
	return bitset{n: n, words: make([]uint64, (n+63)/64)}
}

func fullBitset(n int) bitset {
	b := newBitset(n)
	for i := 0; i < n; i++ {
		b.words[i/64] |= 1 << uint(i%64)
	}
	return b
}

func (b bitset) has(v int) bool {
	if v < 0 || v >= b.n {
		return false
	}
	return (b.words[v/64]>>uint(v%64))&1 == 1
}

func (b *bitset) set(v int) {
	b.words[v/64] |= 1 << uint(v%64)
}

func (b *bitset) clear(v int) {
	b.words[v/64] &^= 1 << uint(v%64)
}

func (b bitset) count() int {
	c := 0
	for _, w := range b.words {
		c += bits.OnesCount64(w)
	}
	return c
}

func (b bitset) clone() bitset {
	words := make([]uint64, len(b.words))
	copy(words, b.words)
	return bitset{n: b.n, words: words}
}

func (b bitset) forEach(f func(v int)) {
	for i, w := range b.words {
		for w != 0 {
			off := bits.TrailingZeros64(w)
			f(i*64 + off)
			w &^= 1 << uint(off)
		}
	}
}

// intersects reports whether b and other share any member
func (b bitset) intersects(other bitset) bool {
	for i := range b.words {
		if b.words[i]&other.words[i] != 0 {
			return true
		}
	}
	return false
}

// changeKind identifies a reversible state mutation on the undo trail
type changeKind uint8

const (
	changeExclude changeKind = iota
	changeAssign
)

type change struct {
	kind changeKind
	slot int
	doc  int
}

// searchState is the mutable working state of one scheduling run: per-slot
// candidate domains, per-slot assigned sets, per-doctor tallies, and the undo
// trail. It is exclusively owned by a single run and never shared.
type searchState struct {
	model *Model

	nSlots int
	nDocs  int
	nDays  int

	// Per slot: doctors still eligible but not yet assigned, and doctors
	// assigned so far. A slot is open while assignedCount < target.
	candidates []bitset
	assigned   []bitset

	assignedCount []int
	target        []int

	// Per doctor: assigned slot set, running totals, and per-day assignment
	// counts (0..2: day and night slot of the same date).
	docSlots    []bitset
	docCount    []int
	docDayCount [][]int8

	// Per doctor: number of open slots the doctor remains a candidate for.
	// Used to detect early that a doctor can no longer reach the minimum of
	// its shift-count band.
	docPossible []int

	trail  []change
	frames []int // trail length at each decision depth
}

func newSearchState(m *Model) *searchState {
	nSlots := len(m.Slots)
	nDocs := len(m.Doctors)
	nDays := (nSlots + 1) / 2

	st := &searchState{
		model:         m,
		nSlots:        nSlots,
		nDocs:         nDocs,
		nDays:         nDays,
		candidates:    make([]bitset, nSlots),
		assigned:      make([]bitset, nSlots),
		assignedCount: make([]int, nSlots),
		target:        make([]int, nSlots),
		docSlots:      make([]bitset, nDocs),
		docCount:      make([]int, nDocs),
		docDayCount:   make([][]int8, nDocs),
		docPossible:   make([]int, nDocs),
	}

	for s := 0; s < nSlots; s++ {
		st.candidates[s] = fullBitset(nDocs)
		st.assigned[s] = newBitset(nDocs)
		st.target[s] = m.Targets[s]
	}
	for d := 0; d < nDocs; d++ {
		st.docSlots[d] = newBitset(nSlots)
		st.docDayCount[d] = make([]int8, nDays)
		st.docPossible[d] = nSlots
	}

	return st
}

// pushFrame marks the start of one decision's changes on the trail
func (st *searchState) pushFrame() {
	st.frames = append(st.frames, len(st.trail))
}

// popFrame undoes every change made since the matching pushFrame, as a unit
func (st *searchState) popFrame() {
	mark := st.frames[len(st.frames)-1]
	st.frames = st.frames[:len(st.frames)-1]

	for i := len(st.trail) - 1; i >= mark; i-- {
		ch := st.trail[i]
		switch ch.kind {
		case changeAssign:
			// Mirror place: if this assignment closed the slot, remaining
			// candidates regain it as a possibility.
			if st.assignedCount[ch.slot] == st.target[ch.slot] {
				st.candidates[ch.slot].forEach(func(d int) {
					st.docPossible[d]++
				})
			}
			st.assigned[ch.slot].clear(ch.doc)
			st.assignedCount[ch.slot]--
			st.docSlots[ch.doc].clear(ch.slot)
			st.docCount[ch.doc]--
			st.docDayCount[ch.doc][ch.slot/2]--
			st.candidates[ch.slot].set(ch.doc)
			st.docPossible[ch.doc]++
		case changeExclude:
			st.candidates[ch.slot].set(ch.doc)
			if st.assignedCount[ch.slot] < st.target[ch.slot] {
				st.docPossible[ch.doc]++
			}
		}
	}
	st.trail = st.trail[:mark]
}

// exclude removes a doctor from a slot's candidate domain, recording the
// change on the trail. Safe to call when the doctor is not a candidate.
func (st *searchState) exclude(slot, doc int) {
	if !st.candidates[slot].has(doc) {
		return
	}
	st.candidates[slot].clear(doc)
	if st.assignedCount[slot] < st.target[slot] {
		st.docPossible[doc]--
	}
	st.trail = append(st.trail, change{kind: changeExclude, slot: slot, doc: doc})
}

// place moves a doctor from candidate to assigned on a slot, recording the
// change. Callers must have verified candidacy; consequence propagation is
// handled separately.
func (st *searchState) place(slot, doc int) {
	st.candidates[slot].clear(doc)
	st.docPossible[doc]--
	st.assigned[slot].set(doc)
	st.assignedCount[slot]++
	st.docSlots[doc].set(slot)
	st.docCount[doc]++
	st.docDayCount[doc][slot/2]++
	// Filling the slot removes it from every remaining candidate's
	// possibility count.
	if st.assignedCount[slot] == st.target[slot] {
		st.candidates[slot].forEach(func(d int) {
			st.docPossible[d]--
		})
	}
	st.trail = append(st.trail, change{kind: changeAssign, slot: slot, doc: doc})
}

// worked reports whether the doctor has an assignment on the given day
func (st *searchState) worked(doc, day int) bool {
	return day >= 0 && day < st.nDays && st.docDayCount[doc][day] > 0
}

// dayClosed reports whether the doctor can no longer be assigned on the given
// day: not worked, and every slot of the day is either full or excludes the
// doctor. A closed, unworked day is a certain day off.
func (st *searchState) dayClosed(doc, day int) bool {
	if day < 0 || day >= st.nDays {
		return false
	}
	if st.docDayCount[doc][day] > 0 {
		return false
	}
	for _, slot := range []int{day * 2, day*2 + 1} {
		if slot >= st.nSlots {
			continue
		}
		if st.assignedCount[slot] < st.target[slot] && st.candidates[slot].has(doc) {
			return false
		}
	}
	return true
}

// slotOpen reports whether the slot still accepts assignments
func (st *searchState) slotOpen(slot int) bool {
	return st.assignedCount[slot] < st.target[slot]
}
