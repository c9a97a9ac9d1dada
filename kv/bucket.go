// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Bucket provides a logical bucket over a kv store by prefixing keys.
type Bucket string

type bucketGetPutter struct {
	b   Bucket
	src GetPutter
}

// NewGetPutter creates a bucket get-putter from the source get-putter.
func (b Bucket) NewGetPutter(src GetPutter) GetPutter {
	return &bucketGetPutter{b, src}
}

func (g *bucketGetPutter) key(key []byte) []byte {
	return append([]byte(g.b), key...)
}

func (g *bucketGetPutter) Get(key []byte) ([]byte, error) {
	return g.src.Get(g.key(key))
}

func (g *bucketGetPutter) Has(key []byte) (bool, error) {
	return g.src.Has(g.key(key))
}

func (g *bucketGetPutter) IsNotFound(err error) bool {
	return g.src.IsNotFound(err)
}

func (g *bucketGetPutter) Put(key, value []byte) error {
	return g.src.Put(g.key(key), value)
}

func (g *bucketGetPutter) Delete(key []byte) error {
	return g.src.Delete(g.key(key))
}

func (g *bucketGetPutter) NewBatch() Batch {
	return &bucketBatch{g.b, g.src.NewBatch()}
}

// WrapBatch wraps an existing batch with the bucket prefix, so that multiple
// buckets can share one atomic batch.
func (b Bucket) WrapBatch(batch Batch) Batch {
	return &bucketBatch{b, batch}
}

// NewIterator iterates keys inside the bucket, with the prefix stripped.
func (g *bucketGetPutter) NewIterator(r Range) Iterator {
	iterRange := Range{
		From: g.key(r.From),
	}
	if r.To != nil {
		iterRange.To = g.key(r.To)
	} else {
		iterRange.To = PrefixEnd([]byte(g.b))
	}
	return &bucketIterator{len(g.b), g.src.NewIterator(iterRange)}
}

// PrefixEnd returns the smallest key greater than all keys with the prefix,
// or nil if no such key exists.
func PrefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

type bucketIterator struct {
	prefixLen int
	Iterator
}

func (i *bucketIterator) Key() []byte {
	return i.Iterator.Key()[i.prefixLen:]
}

type bucketBatch struct {
	b     Bucket
	batch Batch
}

func (b *bucketBatch) Put(key, value []byte) error {
	return b.batch.Put(append([]byte(b.b), key...), value)
}

func (b *bucketBatch) Delete(key []byte) error {
	return b.batch.Delete(append([]byte(b.b), key...))
}

func (b *bucketBatch) NewBatch() Batch { return &bucketBatch{b.b, b.batch.NewBatch()} }
func (b *bucketBatch) Len() int        { return b.batch.Len() }
func (b *bucketBatch) Write() error    { return b.batch.Write() }
