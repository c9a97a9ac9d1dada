// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solum-network/solum/solum"
)

func TestAccountIsEmpty(t *testing.T) {
	acc := emptyAccount()
	assert.True(t, acc.IsEmpty())

	acc = emptyAccount()
	acc.Balance = big.NewInt(1)
	assert.False(t, acc.IsEmpty())

	acc = emptyAccount()
	acc.Rent = big.NewInt(1)
	assert.False(t, acc.IsEmpty(), "an account holding only rent is live")

	acc = emptyAccount()
	acc.CodeHash = []byte{1}
	assert.False(t, acc.IsEmpty())

	acc = emptyAccount()
	acc.StorageWords = 1
	assert.False(t, acc.IsEmpty())
}

func TestAccountCostPerBlock(t *testing.T) {
	acc := emptyAccount()
	assert.Equal(t, new(big.Int).SetUint64(solum.RentAccountCost), acc.CostPerBlock(0))

	acc.StorageWords = 3
	// 33 bytes of code round up to 2 words
	expected := new(big.Int).SetUint64(solum.RentAccountCost + 5*solum.RentWordCost)
	assert.Equal(t, expected, acc.CostPerBlock(33))
}

func TestAccountCalcRent(t *testing.T) {
	acc := emptyAccount()
	acc.Rent = new(big.Int).SetUint64(solum.RentAccountCost * 10)
	acc.RentLastPaid = 100

	assert.Equal(t, acc.Rent, acc.CalcRent(0, 100), "no decay at the settled height")
	assert.Equal(t, acc.Rent, acc.CalcRent(0, 50), "no decay before the settled height")

	expected := new(big.Int).SetUint64(solum.RentAccountCost * 6)
	assert.Equal(t, expected, acc.CalcRent(0, 104))

	assert.Equal(t, 0, acc.CalcRent(0, 10000).Sign(), "projection clamps at zero")

	acc.RentLastPaid = 0
	assert.Equal(t, acc.Rent, acc.CalcRent(0, 10000), "no decay before the record is settled")
}

func TestAccountEvictionBlock(t *testing.T) {
	acc := emptyAccount()
	assert.Equal(t, solum.NeverEvict, acc.EvictionBlock(0), "unsettled record never evicts")

	acc.Rent = new(big.Int).SetUint64(solum.RentAccountCost * 10)
	acc.RentLastPaid = 100
	assert.Equal(t, uint32(110), acc.EvictionBlock(0))

	// the quotient is floored
	acc.Rent = new(big.Int).SetUint64(solum.RentAccountCost*10 + 1)
	assert.Equal(t, uint32(110), acc.EvictionBlock(0))

	// huge balances saturate instead of wrapping
	acc.Rent = new(big.Int).Lsh(big.NewInt(1), 128)
	assert.Equal(t, solum.NeverEvict, acc.EvictionBlock(0))
}
