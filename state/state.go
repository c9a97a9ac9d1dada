// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/solum-network/solum/cache"
	"github.com/solum-network/solum/kv"
	"github.com/solum-network/solum/solum"
	"github.com/solum-network/solum/stackedmap"
)

const (
	// AccountBucket is the bucket of account records.
	AccountBucket = kv.Bucket("a")
	// StorageBucket is the bucket of storage slots, keyed by address|key.
	StorageBucket = kv.Bucket("s")
	// CodeBucket is the bucket of code blobs, keyed by code hash.
	CodeBucket = kv.Bucket("c")
)

var codeCache = func() *cache.LRU {
	c, _ := cache.NewLRU(512)
	return c
}()

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// State manages the world state.
type State struct {
	store    kv.GetPutter
	accounts kv.GetPutter
	storages kv.GetPutter
	codes    kv.GetPutter
	cache    map[solum.Address]*Account // cache of persisted accounts
	sm       *stackedmap.StackedMap     // keeps revisions of accounts state
}

// New create a state object bound to the given store.
func New(store kv.GetPutter) *State {
	state := State{
		store:    store,
		accounts: AccountBucket.NewGetPutter(store),
		storages: StorageBucket.NewGetPutter(store),
		codes:    CodeBucket.NewGetPutter(store),
		cache:    make(map[solum.Address]*Account),
	}

	state.sm = stackedmap.New(func(key any) (any, bool, error) {
		return state.cacheGetter(key)
	})
	// base level, so writes are legal without an explicit checkpoint
	state.sm.Push()
	return &state
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (value any, exist bool, err error) {
	switch k := key.(type) {
	case solum.Address: // get account
		acc, err := s.getPersistedAccount(k)
		if err != nil {
			return nil, false, err
		}
		return acc, true, nil
	case codeKey: // get code
		acc, err := s.getPersistedAccount(solum.Address(k))
		if err != nil {
			return nil, false, err
		}
		if len(acc.CodeHash) == 0 {
			return []byte(nil), true, nil
		}
		code, err := codeCache.GetOrLoad(string(acc.CodeHash), func(any) (any, error) {
			return s.codes.Get(acc.CodeHash)
		})
		if err != nil {
			return nil, false, err
		}
		return code.([]byte), true, nil
	case storageKey: // get storage
		// the address was ever deleted in the life-cycle of this state instance.
		// treat its storage as an empty set.
		if k.barrier != 0 {
			return rlp.RawValue(nil), true, nil
		}
		data, err := s.storages.Get(storageSlotKey(k.addr, k.key))
		if err != nil {
			if s.storages.IsNotFound(err) {
				return rlp.RawValue(nil), true, nil
			}
			return nil, false, err
		}
		return rlp.RawValue(data), true, nil
	case storageBarrierKey: // get barrier, 0 as initial value
		return 0, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func storageSlotKey(addr solum.Address, key solum.Bytes32) []byte {
	return append(append([]byte(nil), addr[:]...), key[:]...)
}

func (s *State) getPersistedAccount(addr solum.Address) (*Account, error) {
	if acc, ok := s.cache[addr]; ok {
		return acc, nil
	}
	acc, err := loadAccount(s.accounts, addr)
	if err != nil {
		return nil, err
	}
	s.cache[addr] = acc
	return acc, nil
}

// getAccount gets account by address. the returned account should not be modified.
func (s *State) getAccount(addr solum.Address) (*Account, error) {
	v, _, err := s.sm.Get(addr)
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}

// getAccountCopy get a copy of account by address.
func (s *State) getAccountCopy(addr solum.Address) (Account, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return Account{}, err
	}
	return *acc, nil
}

func (s *State) updateAccount(addr solum.Address, acc *Account) {
	s.sm.Put(addr, acc)
}

func (s *State) getStorageBarrier(addr solum.Address) int {
	b, _, _ := s.sm.Get(storageBarrierKey(addr))
	return b.(int)
}

func (s *State) setStorageBarrier(addr solum.Address, barrier int) {
	s.sm.Put(storageBarrierKey(addr), barrier)
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr solum.Address) (*big.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	return acc.Balance, nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr solum.Address, balance *big.Int) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.Balance = balance
	s.updateAccount(addr, &cpy)
	return nil
}

// GetRent returns the stored rent balance for the given address, as of the
// height it was last settled. Use ProjectedRent for the balance at a height.
func (s *State) GetRent(addr solum.Address) (*big.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	return acc.Rent, nil
}

// GetRentLastPaid returns the height rent was last settled for the given address.
// Zero means the account was never touched under the rent rules.
func (s *State) GetRentLastPaid(addr solum.Address) (uint32, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return 0, &Error{err}
	}
	return acc.RentLastPaid, nil
}

// SetRentRecord sets rent balance and last-paid height for the given address.
// This is the single mutation entry point for the rent fields; only the rent
// settlement and top-up paths may call it.
func (s *State) SetRentRecord(addr solum.Address, rent *big.Int, lastPaid uint32) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.Rent, cpy.RentLastPaid = rent, lastPaid
	s.updateAccount(addr, &cpy)
	return nil
}

// GetStorageWords returns the count of non-zero storage slots of the given address.
func (s *State) GetStorageWords(addr solum.Address) (uint64, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return 0, &Error{err}
	}
	return acc.StorageWords, nil
}

// ProjectedRent returns the rent balance of the given address projected to
// the given height, i.e. the value settlement at that height would leave.
func (s *State) ProjectedRent(addr solum.Address, blockNum uint32) (*big.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	codeLen, err := s.codeLen(addr, acc)
	if err != nil {
		return nil, &Error{err}
	}
	return acc.CalcRent(codeLen, blockNum), nil
}

// CostPerBlock returns the current per-block rent cost of the given address.
func (s *State) CostPerBlock(addr solum.Address) (*big.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	codeLen, err := s.codeLen(addr, acc)
	if err != nil {
		return nil, &Error{err}
	}
	return acc.CostPerBlock(codeLen), nil
}

// EvictionBlock derives the height at which the given address runs out of
// rent. The value is never persisted; it is recomputed from the rent record
// and the current code size.
func (s *State) EvictionBlock(addr solum.Address) (uint32, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return 0, &Error{err}
	}
	codeLen, err := s.codeLen(addr, acc)
	if err != nil {
		return 0, &Error{err}
	}
	return acc.EvictionBlock(codeLen), nil
}

func (s *State) codeLen(addr solum.Address, acc *Account) (uint64, error) {
	if len(acc.CodeHash) == 0 {
		return 0, nil
	}
	code, _, err := s.sm.Get(codeKey(addr))
	if err != nil {
		return 0, err
	}
	return uint64(len(code.([]byte))), nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr solum.Address, key solum.Bytes32) (solum.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return solum.Bytes32{}, &Error{err}
	}
	if len(raw) == 0 {
		return solum.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return solum.Bytes32{}, &Error{err}
	}
	return solum.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr solum.Address, key, value solum.Bytes32) error {
	if value.IsZero() {
		return s.SetRawStorage(addr, key, nil)
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	return s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr solum.Address, key solum.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, s.getStorageBarrier(addr), key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw, maintaining the account's
// storage word count on every zero<->non-zero transition.
func (s *State) SetRawStorage(addr solum.Address, key solum.Bytes32, raw rlp.RawValue) error {
	old, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	s.sm.Put(storageKey{addr, s.getStorageBarrier(addr), key}, raw)

	if (len(old) == 0) == (len(raw) == 0) {
		return nil
	}
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	if len(raw) > 0 {
		cpy.StorageWords++
	} else {
		if cpy.StorageWords == 0 {
			// the count no longer matches the actual slot set
			panic(fmt.Errorf("state: storage word count underflow at %v", addr))
		}
		cpy.StorageWords--
	}
	s.updateAccount(addr, &cpy)
	return nil
}

// GetCode returns code for the given address.
func (s *State) GetCode(addr solum.Address) ([]byte, error) {
	v, _, err := s.sm.Get(codeKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return v.([]byte), nil
}

// GetCodeHash returns code hash for the given address.
func (s *State) GetCodeHash(addr solum.Address) (solum.Bytes32, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return solum.Bytes32{}, &Error{err}
	}
	return solum.BytesToBytes32(acc.CodeHash), nil
}

// SetCode set code for the given address.
func (s *State) SetCode(addr solum.Address, code []byte) error {
	var codeHash []byte
	if len(code) > 0 {
		s.sm.Put(codeKey(addr), code)
		codeHash = crypto.Keccak256(code)
		codeCache.Add(string(codeHash), code)
	} else {
		s.sm.Put(codeKey(addr), []byte(nil))
	}
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.CodeHash = codeHash
	s.updateAccount(addr, &cpy)
	return nil
}

// Exists returns whether an account exists at the given address.
// See Account.IsEmpty()
func (s *State) Exists(addr solum.Address) (bool, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return false, &Error{err}
	}
	return !acc.IsEmpty(), nil
}

// Delete deletes an account at the given address: balance, rent record, code
// and storage are all discarded. Deletion is irreversible once committed; a
// later touch of the address starts from a fresh empty account.
func (s *State) Delete(addr solum.Address) {
	s.sm.Put(codeKey(addr), []byte(nil))
	s.updateAccount(addr, emptyAccount())
	// increase the barrier value to discard the address's storage
	s.setStorageBarrier(addr, s.getStorageBarrier(addr)+1)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// IterateAccounts iterates persisted accounts in address order. Pending
// (uncommitted) changes are not visible to the iteration.
func (s *State) IterateAccounts(cb func(addr solum.Address, acc *Account) bool) error {
	iter := s.accounts.NewIterator(kv.Range{})
	defer iter.Release()
	for iter.Next() {
		var acc Account
		if err := rlp.DecodeBytes(iter.Value(), &acc); err != nil {
			return &Error{err}
		}
		if !cb(solum.BytesToAddress(iter.Key()), &acc) {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return &Error{err}
	}
	return nil
}

// Commit replays the journal into one atomic batch and writes it.
// The state instance remains usable afterwards; its cache is reset.
func (s *State) Commit() error {
	type changed struct {
		data        Account
		storage     map[solum.Bytes32]rlp.RawValue
		wipeStorage bool
	}

	var (
		changes = make(map[solum.Address]*changed)
		codes   = make(map[solum.Bytes32][]byte)
	)

	// get or create changed account
	getChanged := func(addr solum.Address) (*changed, error) {
		if obj, ok := changes[addr]; ok {
			return obj, nil
		}
		acc, err := s.getPersistedAccount(addr)
		if err != nil {
			return nil, &Error{err}
		}
		c := &changed{data: *acc}
		changes[addr] = c
		return c, nil
	}

	var jerr error
	// traverse journal to build changes
	s.sm.Journal(func(k, v any) bool {
		var c *changed
		switch key := k.(type) {
		case solum.Address:
			if c, jerr = getChanged(key); jerr != nil {
				return false
			}
			c.data = *(v.(*Account))
		case codeKey:
			code := v.([]byte)
			if len(code) > 0 {
				codes[solum.Bytes32(crypto.Keccak256Hash(code))] = code
			}
		case storageKey:
			if c, jerr = getChanged(key.addr); jerr != nil {
				return false
			}
			if c.storage == nil {
				c.storage = make(map[solum.Bytes32]rlp.RawValue)
			}
			c.storage[key.key] = v.(rlp.RawValue)
		case storageBarrierKey:
			if c, jerr = getChanged(solum.Address(key)); jerr != nil {
				return false
			}
			// discard all storage updates accumulated before the barrier,
			// and wipe the persisted slots of the address.
			c.storage = nil
			c.wipeStorage = true
		}
		return true
	})
	if jerr != nil {
		return &Error{jerr}
	}

	batch := s.store.NewBatch()
	accBatch := AccountBucket.WrapBatch(batch)
	storageBatch := StorageBucket.WrapBatch(batch)
	codeBatch := CodeBucket.WrapBatch(batch)

	for addr, c := range changes {
		if c.wipeStorage {
			iter := s.storages.NewIterator(kv.Range{From: addr[:], To: kv.PrefixEnd(addr[:])})
			for iter.Next() {
				if err := storageBatch.Delete(append([]byte(nil), iter.Key()...)); err != nil {
					iter.Release()
					return &Error{err}
				}
			}
			if err := iter.Error(); err != nil {
				iter.Release()
				return &Error{err}
			}
			iter.Release()
		}
		for k, v := range c.storage {
			slot := storageSlotKey(addr, k)
			if len(v) == 0 {
				if err := storageBatch.Delete(slot); err != nil {
					return &Error{err}
				}
			} else if err := storageBatch.Put(slot, v); err != nil {
				return &Error{err}
			}
		}
		if err := saveAccount(accBatch, addr, &c.data); err != nil {
			return &Error{err}
		}
	}
	for hash, code := range codes {
		if err := codeBatch.Put(hash[:], code); err != nil {
			return &Error{err}
		}
	}

	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	// drop the cache so later reads observe the committed values
	s.cache = make(map[solum.Address]*Account)
	s.sm = stackedmap.New(func(key any) (any, bool, error) {
		return s.cacheGetter(key)
	})
	s.sm.Push()
	return nil
}

type (
	storageKey struct {
		addr    solum.Address
		barrier int
		key     solum.Bytes32
	}
	codeKey           solum.Address
	storageBarrierKey solum.Address
)
