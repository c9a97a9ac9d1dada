// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rent

import (
	"bytes"
	"container/heap"
	"sort"

	"github.com/solum-network/solum/solum"
)

// Schedule is the dual-keyed eviction index: address -> eviction height and
// eviction height -> addresses, backed by an indexed min-heap. It makes the
// per-block eviction sweep proportional to the number of accounts actually
// due instead of the total account count.
//
// The schedule is process-local derived state. It is never part of committed
// state and can be rebuilt from the persisted accounts at any time.
type Schedule struct {
	byAddr map[solum.Address]*entry
	heap   entryHeap
}

type entry struct {
	addr   solum.Address
	height uint32
	index  int // position in the heap
}

// NewSchedule creates an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{
		byAddr: make(map[solum.Address]*entry),
	}
}

// Upsert inserts or relocates the scheduling entry of the given address.
func (s *Schedule) Upsert(addr solum.Address, height uint32) {
	if e, ok := s.byAddr[addr]; ok {
		if e.height == height {
			return
		}
		e.height = height
		heap.Fix(&s.heap, e.index)
		return
	}
	e := &entry{addr: addr, height: height}
	s.byAddr[addr] = e
	heap.Push(&s.heap, e)
}

// Remove removes the entry of the given address unconditionally.
// It returns whether an entry was present.
func (s *Schedule) Remove(addr solum.Address) bool {
	e, ok := s.byAddr[addr]
	if !ok {
		return false
	}
	delete(s.byAddr, addr)
	heap.Remove(&s.heap, e.index)
	return true
}

// Height returns the scheduled eviction height of the given address.
func (s *Schedule) Height(addr solum.Address) (uint32, bool) {
	e, ok := s.byAddr[addr]
	if !ok {
		return 0, false
	}
	return e.height, true
}

// PopDue removes and returns all addresses scheduled at or before the given
// height. The result is sorted by address so that sweeps are deterministic.
func (s *Schedule) PopDue(height uint32) []solum.Address {
	var due []solum.Address
	for s.heap.Len() > 0 && s.heap[0].height <= height {
		e := heap.Pop(&s.heap).(*entry)
		delete(s.byAddr, e.addr)
		due = append(due, e.addr)
	}
	sort.Slice(due, func(i, j int) bool {
		return bytes.Compare(due[i][:], due[j][:]) < 0
	})
	return due
}

// Len returns the number of scheduled accounts.
func (s *Schedule) Len() int {
	return len(s.byAddr)
}

// entryHeap implements heap.Interface, ordered by eviction height then
// address, keeping entry.index in sync.
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].height != h[j].height {
		return h[i].height < h[j].height
	}
	return bytes.Compare(h[i].addr[:], h[j].addr[:]) < 0
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
