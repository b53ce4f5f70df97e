package pool

import (
	"bytes"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Parallelize(t *testing.T) {
	for _, pl := range []*Pool{nil, NewPool(0), NewPool(3)} {
		results := pl.Parallelize(50, func(i int) interface{} { return i * i })
		require.Len(t, results, 50)
		for i, r := range results {
			assert.Equal(t, i*i, r)
		}
		pl.TearDown()
	}
}

func TestPool_Search(t *testing.T) {
	for _, pl := range []*Pool{nil, NewPool(4)} {
		var calls int64
		results := pl.Search(5, func() interface{} {
			if atomic.AddInt64(&calls, 1)%3 != 0 {
				return nil
			}
			return true
		})
		require.Len(t, results, 5)
		for _, r := range results {
			assert.Equal(t, true, r)
		}
		pl.TearDown()
	}
}

func TestLockedReader(t *testing.T) {
	r := NewLockedReader(bytes.NewReader([]byte{1, 2, 3, 4}))
	pl := NewPool(4)
	defer pl.TearDown()
	reads := pl.Parallelize(4, func(int) interface{} {
		b := make([]byte, 1)
		_, err := r.Read(b)
		require.NoError(t, err)
		return b[0]
	})
	seen := map[byte]bool{}
	for _, b := range reads {
		seen[b.(byte)] = true
	}
	assert.Len(t, seen, 4)
}
