// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelDB(t *testing.T) {
	db, err := NewMem()
	assert.Nil(t, err)
	defer db.Close()

	key := []byte("key")
	value := []byte("value")

	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))

	assert.Nil(t, db.Put(key, value))

	v, err := db.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, value, v)

	has, err := db.Has(key)
	assert.Nil(t, err)
	assert.True(t, has)

	assert.Nil(t, db.Delete(key))
	has, err = db.Has(key)
	assert.Nil(t, err)
	assert.False(t, has)
}

func TestLevelDBBatch(t *testing.T) {
	db, _ := NewMem()
	defer db.Close()

	batch := db.NewBatch()
	batch.Put([]byte("k1"), []byte("v1"))
	batch.Put([]byte("k2"), []byte("v2"))
	assert.Equal(t, 2, batch.Len())
	assert.Nil(t, batch.Write())

	v, err := db.Get([]byte("k1"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v1"), v)
}

func TestBucket(t *testing.T) {
	db, _ := NewMem()
	defer db.Close()

	b1 := Bucket("b1").NewGetPutter(db)
	b2 := Bucket("b2").NewGetPutter(db)

	assert.Nil(t, b1.Put([]byte("key"), []byte("v1")))
	assert.Nil(t, b2.Put([]byte("key"), []byte("v2")))

	v, err := b1.Get([]byte("key"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v1"), v)

	v, err = b2.Get([]byte("key"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v2"), v)

	// iteration stays inside the bucket and strips the prefix
	assert.Nil(t, b1.Put([]byte("key2"), []byte("v3")))
	iter := b1.NewIterator(Range{})
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	iter.Release()
	assert.Nil(t, iter.Error())
	assert.Equal(t, []string{"key", "key2"}, keys)
}
