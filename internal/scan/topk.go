package scan

import (
	"container/heap"
	"sort"

	"duscan/internal/category"
)

// topEntry carries an arrival sequence number so ties between equal-sized
// files resolve to first-seen order after merging.
type topEntry struct {
	path  string
	bytes int64
	seq   uint64
}

// topList is a bounded min-heap of the largest files seen so far. A
// strictly larger file evicts the current minimum; an equal-sized file does
// not, so the first-seen entry survives. A negative limit means unbounded,
// zero keeps nothing.
type topList struct {
	limit   int
	entries []topEntry
}

func (t *topList) Len() int { return len(t.entries) }

func (t *topList) Less(i, j int) bool {
	a, b := t.entries[i], t.entries[j]
	if a.bytes != b.bytes {
		return a.bytes < b.bytes
	}
	// Later arrivals sit closer to the heap top so they evict first.
	return a.seq > b.seq
}

func (t *topList) Swap(i, j int) { t.entries[i], t.entries[j] = t.entries[j], t.entries[i] }

func (t *topList) Push(x any) { t.entries = append(t.entries, x.(topEntry)) }

func (t *topList) Pop() any {
	last := t.entries[len(t.entries)-1]
	t.entries = t.entries[:len(t.entries)-1]
	return last
}

func (t *topList) add(e topEntry) {
	if t.limit == 0 {
		return
	}
	if t.limit < 0 {
		t.entries = append(t.entries, e)
		return
	}
	if len(t.entries) < t.limit {
		heap.Push(t, e)
		return
	}
	if e.bytes > t.entries[0].bytes {
		t.entries[0] = e
		heap.Fix(t, 0)
	}
}

// drain returns the retained entries in arrival order.
func (t *topList) drain() []topEntry {
	out := t.entries
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

var categoryCount = len(category.All())

// accumulator is the thread-local state one worker builds up. Workers never
// share accumulators; they are merged single-threaded after all workers
// have joined.
type accumulator struct {
	totals []int64
	counts []int64
	tops   []*topList

	files   int64
	dirs    int64
	skipped int64

	seq uint64
}

func newAccumulator(limit int) *accumulator {
	acc := &accumulator{
		totals: make([]int64, categoryCount),
		counts: make([]int64, categoryCount),
		tops:   make([]*topList, categoryCount),
	}
	for i := range acc.tops {
		acc.tops[i] = &topList{limit: limit}
	}
	return acc
}

func (a *accumulator) addFile(path string, bytes int64) {
	c := category.Classify(path)
	a.totals[c] += bytes
	a.counts[c]++
	a.seq++
	a.tops[c].add(topEntry{path: path, bytes: bytes, seq: a.seq})
}

// merge folds worker accumulators into a Result. Accumulators must be
// passed in task order so tie-breaking stays deterministic regardless of
// scheduling.
func merge(accs []*accumulator, topK int) *Result {
	totals := make([]int64, categoryCount)
	counts := make([]int64, categoryCount)
	merged := make([][]topEntry, categoryCount)
	res := &Result{}

	for _, acc := range accs {
		if acc == nil {
			continue
		}
		for c := range totals {
			totals[c] += acc.totals[c]
			counts[c] += acc.counts[c]
			merged[c] = append(merged[c], acc.tops[c].drain()...)
		}
		res.FilesScanned += acc.files
		res.DirsScanned += acc.dirs
		res.SkippedErrors += acc.skipped
	}

	for _, c := range category.All() {
		if counts[c] == 0 {
			continue
		}
		res.Categories = append(res.Categories, CategoryTotal{Category: c, Bytes: totals[c]})
		res.TotalBytes += totals[c]

		entries := merged[c]
		// Stable sort keeps merge (first-seen) order among equal sizes.
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].bytes > entries[j].bytes })
		if topK >= 0 && len(entries) > topK {
			entries = entries[:topK]
		}
		files := make([]TopFileEntry, len(entries))
		for i, e := range entries {
			files[i] = TopFileEntry{Path: e.path, Bytes: e.bytes}
		}
		res.TopFilesByCategory = append(res.TopFilesByCategory, CategoryTopFiles{Category: c, Files: files})
	}
	return res
}
