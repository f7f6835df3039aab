package affinity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate([]int{0, MaxCPUs - 1}))
	assert.Error(t, Validate([]int{-1}))
	assert.Error(t, Validate([]int{0, MaxCPUs}))
}

func TestSetEmpty(t *testing.T) {
	assert.ErrorIs(t, Set(nil), ErrEmptySet)
	assert.ErrorIs(t, Set([]int{}), ErrEmptySet)
}
