package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveIgnoresVersion1FieldsOnVersion0(t *testing.T) {
	p := ThreadParams{Version: ThreadParamsVersion0, StackSize: 1 << 20, Name: "x", CPUAffinity: []int{0}}
	name, cpus := p.Effective()
	assert.Empty(t, name)
	assert.Nil(t, cpus)

	p.Version = ThreadParamsVersion1
	name, cpus = p.Effective()
	assert.Equal(t, "x", name)
	assert.Equal(t, []int{0}, cpus)
}

func TestDefaultStackSize(t *testing.T) {
	prev := DefaultStackSizeBytes
	t.Cleanup(func() { DefaultStackSizeBytes = prev })

	DefaultStackSizeBytes = ""
	size, conflict, err := DefaultStackSize()
	assert.NoError(t, err)
	assert.False(t, conflict)
	if constrainedDevice {
		assert.Equal(t, ThreadStackSizeOnConstrainedDevice, size)
	} else {
		assert.Zero(t, size)
	}

	DefaultStackSizeBytes = "262144"
	size, conflict, err = DefaultStackSize()
	assert.NoError(t, err)
	assert.Equal(t, uintptr(262144), size)
	assert.Equal(t, constrainedDevice, conflict)

	p := DefaultThreadParams()
	assert.Equal(t, ThreadParamsVersion0, p.Version)
	assert.Equal(t, uintptr(262144), p.StackSize)

	// unparsable overrides fall back and are reported
	DefaultStackSizeBytes = "lots"
	size, conflict, err = DefaultStackSize()
	assert.ErrorContains(t, err, `"lots"`)
	assert.False(t, conflict)
	if constrainedDevice {
		assert.Equal(t, ThreadStackSizeOnConstrainedDevice, size)
	} else {
		assert.Zero(t, size)
	}
}
