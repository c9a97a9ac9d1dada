// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rent

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solum-network/solum/kv"
	"github.com/solum-network/solum/solum"
	"github.com/solum-network/solum/state"
)

const testActivation uint32 = 10

func newTestRent(t *testing.T) (*Rent, *state.State) {
	db, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)
	return New(st, NewSchedule(), solum.ForkConfig{RENT: testActivation}), st
}

func TestSettleFreshGrantsStipend(t *testing.T) {
	r, st := newTestRent(t)
	addr := solum.BytesToAddress([]byte("fresh"))

	require.NoError(t, r.Settle(addr, 100))

	rentBal, err := st.GetRent(addr)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).SetUint64(solum.RentStipend), rentBal)
	lastPaid, err := st.GetRentLastPaid(addr)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), lastPaid)

	evict, err := r.EvictionBlock(addr)
	require.NoError(t, err)
	assert.Equal(t, 100+solum.MigrationWindow, evict)

	height, ok := r.Schedule().Height(addr)
	assert.True(t, ok)
	assert.Equal(t, evict, height)
}

func TestSettleCharges(t *testing.T) {
	r, st := newTestRent(t)
	addr := solum.BytesToAddress([]byte("addr"))

	require.NoError(t, r.Settle(addr, 100))
	require.NoError(t, r.Settle(addr, 350))

	expected := new(big.Int).SetUint64(solum.RentStipend - 250*solum.RentAccountCost)
	rentBal, err := st.GetRent(addr)
	require.NoError(t, err)
	assert.Equal(t, expected, rentBal)
	lastPaid, err := st.GetRentLastPaid(addr)
	require.NoError(t, err)
	assert.Equal(t, uint32(350), lastPaid)
}

func TestSettleIdempotent(t *testing.T) {
	r, st := newTestRent(t)
	addr := solum.BytesToAddress([]byte("addr"))

	require.NoError(t, r.Settle(addr, 100))
	require.NoError(t, r.Settle(addr, 200))
	rentBefore, err := st.GetRent(addr)
	require.NoError(t, err)

	require.NoError(t, r.Settle(addr, 200))
	rentAfter, err := st.GetRent(addr)
	require.NoError(t, err)
	assert.Equal(t, rentBefore, rentAfter)
	lastPaid, err := st.GetRentLastPaid(addr)
	require.NoError(t, err)
	assert.Equal(t, uint32(200), lastPaid)
}

func TestSettleBackwardsPanics(t *testing.T) {
	r, _ := newTestRent(t)
	addr := solum.BytesToAddress([]byte("addr"))

	require.NoError(t, r.Settle(addr, 100))
	assert.Panics(t, func() { _ = r.Settle(addr, 99) })
}

func TestSettlePastEvictionPanics(t *testing.T) {
	r, _ := newTestRent(t)
	addr := solum.BytesToAddress([]byte("addr"))

	require.NoError(t, r.Settle(addr, 100))
	evict, err := r.EvictionBlock(addr)
	require.NoError(t, err)

	// settling exactly at the eviction height is still allowed
	require.NoError(t, r.Settle(addr, evict))
	assert.Panics(t, func() { _ = r.Settle(addr, evict+1) })
}

func TestDueTieBreak(t *testing.T) {
	r, _ := newTestRent(t)
	addr := solum.BytesToAddress([]byte("addr"))

	require.NoError(t, r.Settle(addr, 100))
	evict, err := r.EvictionBlock(addr)
	require.NoError(t, err)

	due, err := r.Due(addr, evict-1)
	require.NoError(t, err)
	assert.False(t, due)
	due, err = r.Due(addr, evict)
	require.NoError(t, err)
	assert.True(t, due, "due at the eviction height, not past it")
}

func TestAddToFreshAddress(t *testing.T) {
	r, st := newTestRent(t)
	addr := solum.BytesToAddress([]byte("addr"))
	amount := big.NewInt(123456)

	require.NoError(t, r.Add(addr, amount, 100))

	// the amount is recorded as-is; the stipend is reserved for the
	// first funding/code/storage touch
	rentBal, err := st.GetRent(addr)
	require.NoError(t, err)
	assert.Equal(t, amount, rentBal)
	lastPaid, err := st.GetRentLastPaid(addr)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), lastPaid)
}

func TestAddSettlesFirst(t *testing.T) {
	r, st := newTestRent(t)
	addr := solum.BytesToAddress([]byte("addr"))

	require.NoError(t, r.Settle(addr, 100))
	require.NoError(t, r.Add(addr, big.NewInt(1000), 200))

	expected := new(big.Int).SetUint64(solum.RentStipend - 100*solum.RentAccountCost + 1000)
	rentBal, err := st.GetRent(addr)
	require.NoError(t, err)
	assert.Equal(t, expected, rentBal)

	// the top-up pushed the eviction height out
	evict, err := r.EvictionBlock(addr)
	require.NoError(t, err)
	height, ok := r.Schedule().Height(addr)
	assert.True(t, ok)
	assert.Equal(t, evict, height)
}

func TestApplyStipend(t *testing.T) {
	r, st := newTestRent(t)
	addr := solum.BytesToAddress([]byte("addr"))

	// below the stipend: raised
	require.NoError(t, st.SetRentRecord(addr, big.NewInt(5), 100))
	require.NoError(t, r.ApplyStipend(addr, 150))
	rentBal, err := st.GetRent(addr)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).SetUint64(solum.RentStipend), rentBal)

	// above the stipend: untouched
	larger := new(big.Int).SetUint64(solum.RentStipend * 2)
	require.NoError(t, st.SetRentRecord(addr, larger, 150))
	require.NoError(t, r.ApplyStipend(addr, 200))
	rentBal, err = st.GetRent(addr)
	require.NoError(t, err)
	assert.Equal(t, larger, rentBal)
	lastPaid, err := st.GetRentLastPaid(addr)
	require.NoError(t, err)
	assert.Equal(t, uint32(200), lastPaid)
}

func TestBalanceProjection(t *testing.T) {
	r, _ := newTestRent(t)
	addr := solum.BytesToAddress([]byte("addr"))

	bal, err := r.Balance(addr, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign(), "no record, no rent")

	require.NoError(t, r.Settle(addr, 100))
	bal, err = r.Balance(addr, 600)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).SetUint64(solum.RentStipend-500*solum.RentAccountCost), bal)
}

func TestBalanceOfUnmigratedAccount(t *testing.T) {
	r, st := newTestRent(t)
	addr := solum.BytesToAddress([]byte("addr"))

	// pre-existing account, never touched after activation
	require.NoError(t, st.SetBalance(addr, big.NewInt(1)))

	seed := new(big.Int).SetUint64(solum.RentAccountCost * uint64(solum.MigrationWindow))
	bal, err := r.Balance(addr, testActivation)
	require.NoError(t, err)
	assert.Equal(t, seed, bal)

	bal, err = r.Balance(addr, testActivation+100)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Sub(seed, new(big.Int).SetUint64(100*solum.RentAccountCost)), bal)

	evict, err := r.EvictionBlock(addr)
	require.NoError(t, err)
	assert.Equal(t, testActivation+solum.MigrationWindow, evict)
}

func TestEvict(t *testing.T) {
	r, st := newTestRent(t)
	addr := solum.BytesToAddress([]byte("addr"))

	require.NoError(t, st.SetBalance(addr, big.NewInt(1)))
	require.NoError(t, r.Settle(addr, 100))
	require.Equal(t, 1, r.Schedule().Len())

	r.Evict(addr)

	exists, err := st.Exists(addr)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Zero(t, r.Schedule().Len())
}

func TestRescheduleRemovesDeadEntry(t *testing.T) {
	r, st := newTestRent(t)
	addr := solum.BytesToAddress([]byte("addr"))

	require.NoError(t, r.Settle(addr, 100))
	require.Equal(t, 1, r.Schedule().Len())

	st.Delete(addr)
	require.NoError(t, r.Reschedule(addr))
	assert.Zero(t, r.Schedule().Len())
}
