// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/solum-network/solum/kv"
	"github.com/solum-network/solum/solum"
)

// Account is the consensus representation of an account.
// RLP encoded objects are stored in the account bucket.
type Account struct {
	Balance *big.Int
	Rent    *big.Int // non-refundable rent balance, consumed over time
	// RentLastPaid is the height rent was last settled at.
	// Zero means the account has never been touched under the rent rules.
	RentLastPaid uint32
	StorageWords uint64 // count of non-zero storage slots
	CodeHash     []byte // hash of code
}

// IsEmpty returns if an account is empty.
// An empty account has zero balance, zero rent, zero-length code hash and
// no storage words. An account holding only rent is NOT empty: a rent
// balance may be paid to an address before any code or value exists there.
func (a *Account) IsEmpty() bool {
	return a.Balance.Sign() == 0 &&
		a.Rent.Sign() == 0 &&
		len(a.CodeHash) == 0 &&
		a.StorageWords == 0
}

var (
	bigRentAccountCost = new(big.Int).SetUint64(solum.RentAccountCost)
	bigRentWordCost    = new(big.Int).SetUint64(solum.RentWordCost)
)

// CostPerBlock returns the account's current rent cost per block:
// the flat account cost plus the word cost for every 32-byte word of
// code and every non-zero storage slot.
func (a *Account) CostPerBlock(codeLen uint64) *big.Int {
	words := new(big.Int).SetUint64(solum.CodeWords(codeLen) + a.StorageWords)
	words.Mul(words, bigRentWordCost)
	return words.Add(words, bigRentAccountCost)
}

// CalcRent projects the rent balance at the given height, without mutating
// the account. The projection never goes below zero.
func (a *Account) CalcRent(codeLen uint64, blockNum uint32) *big.Int {
	if a.RentLastPaid == 0 {
		return a.Rent
	}

	if blockNum <= a.RentLastPaid {
		return a.Rent
	}

	x := new(big.Int).SetUint64(uint64(blockNum - a.RentLastPaid))
	x.Mul(x, a.CostPerBlock(codeLen))
	x.Sub(a.Rent, x)
	if x.Sign() < 0 {
		return &big.Int{}
	}
	return x
}

// EvictionBlock derives the height at which the account runs out of rent:
// RentLastPaid + floor(Rent / CostPerBlock), saturating at solum.NeverEvict.
// Accounts not yet under the rent rules (RentLastPaid == 0) never evict.
func (a *Account) EvictionBlock(codeLen uint64) uint32 {
	if a.RentLastPaid == 0 {
		return solum.NeverEvict
	}

	cost := a.CostPerBlock(codeLen)
	if cost.Sign() == 0 {
		return solum.NeverEvict
	}

	q := new(big.Int).Div(a.Rent, cost)
	if !q.IsUint64() {
		return solum.NeverEvict
	}
	blocks := q.Uint64()
	if blocks >= uint64(solum.NeverEvict)-uint64(a.RentLastPaid) {
		return solum.NeverEvict
	}
	return a.RentLastPaid + uint32(blocks)
}

func emptyAccount() *Account {
	return &Account{Balance: &big.Int{}, Rent: &big.Int{}}
}

// loadAccount load an account by address from the account bucket.
// It returns an empty account if no account found at the address.
func loadAccount(accounts kv.Getter, addr solum.Address) (*Account, error) {
	data, err := accounts.Get(addr[:])
	if err != nil {
		if accounts.IsNotFound(err) {
			return emptyAccount(), nil
		}
		return nil, err
	}
	var a Account
	if err := rlp.DecodeBytes(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// saveAccount save account into the batch at given address.
// If the given account is empty, the value for given address is deleted.
func saveAccount(batch kv.Putter, addr solum.Address, a *Account) error {
	if a.IsEmpty() {
		return batch.Delete(addr[:])
	}

	data, err := rlp.EncodeToBytes(a)
	if err != nil {
		return err
	}
	return batch.Put(addr[:], data)
}
