// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solum-network/solum/solum"
)

func TestScheduleUpsert(t *testing.T) {
	s := NewSchedule()
	addr := solum.BytesToAddress([]byte("a"))

	s.Upsert(addr, 100)
	height, ok := s.Height(addr)
	assert.True(t, ok)
	assert.Equal(t, uint32(100), height)
	assert.Equal(t, 1, s.Len())

	// relocation, not duplication
	s.Upsert(addr, 200)
	height, _ = s.Height(addr)
	assert.Equal(t, uint32(200), height)
	assert.Equal(t, 1, s.Len())
}

func TestScheduleRemove(t *testing.T) {
	s := NewSchedule()
	addr := solum.BytesToAddress([]byte("a"))

	assert.False(t, s.Remove(addr))
	s.Upsert(addr, 100)
	assert.True(t, s.Remove(addr))
	assert.Zero(t, s.Len())
	_, ok := s.Height(addr)
	assert.False(t, ok)
}

func TestSchedulePopDue(t *testing.T) {
	s := NewSchedule()
	a1 := solum.BytesToAddress([]byte{1})
	a2 := solum.BytesToAddress([]byte{2})
	a3 := solum.BytesToAddress([]byte{3})

	s.Upsert(a3, 50)
	s.Upsert(a1, 100)
	s.Upsert(a2, 100)

	assert.Empty(t, s.PopDue(49))

	due := s.PopDue(100)
	assert.Equal(t, []solum.Address{a1, a2, a3}, due, "due set is address ordered")
	assert.Zero(t, s.Len())

	// popped entries are gone
	assert.Empty(t, s.PopDue(100))
}

func TestSchedulePopDuePartial(t *testing.T) {
	s := NewSchedule()
	a1 := solum.BytesToAddress([]byte{1})
	a2 := solum.BytesToAddress([]byte{2})

	s.Upsert(a1, 10)
	s.Upsert(a2, 20)

	assert.Equal(t, []solum.Address{a1}, s.PopDue(15))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []solum.Address{a2}, s.PopDue(20))
}

func TestScheduleRelocateThenPop(t *testing.T) {
	s := NewSchedule()
	a1 := solum.BytesToAddress([]byte{1})
	a2 := solum.BytesToAddress([]byte{2})

	s.Upsert(a1, 10)
	s.Upsert(a2, 20)
	// a top-up pushes the eviction height out
	s.Upsert(a1, 30)

	assert.Empty(t, s.PopDue(15))
	assert.Equal(t, []solum.Address{a2}, s.PopDue(25))
	assert.Equal(t, []solum.Address{a1}, s.PopDue(30))
}
