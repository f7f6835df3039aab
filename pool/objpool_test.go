package pool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-thread/pool"
)

type record struct{ n int }

func TestSyncPoolCreates(t *testing.T) {
	created := 0
	p := pool.NewSyncPool(func() *record {
		created++
		return &record{}
	})
	r := p.Get()
	assert.NotNil(t, r)
	assert.Equal(t, 1, created)
	p.Put(r)
}

func TestCountingPool(t *testing.T) {
	p := pool.NewCountingPool[*record](pool.NewSyncPool(func() *record { return &record{} }))
	a, b := p.Get(), p.Get()
	assert.Equal(t, int64(2), p.Outstanding())
	p.Put(a)
	assert.Equal(t, int64(1), p.Outstanding())
	p.Put(b)
	assert.Equal(t, int64(2), p.Gets())
	assert.Equal(t, int64(2), p.Puts())
	assert.Zero(t, p.Outstanding())
}
