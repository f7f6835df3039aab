//go:build linux
// +build linux

package concurrency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnNamesThread(t *testing.T) {
	var s Spawner
	inside := make(chan string, 1)
	release := make(chan struct{})
	th, err := s.Spawn(Attr{Name: "hioload-test"}, nil, func(*Thread) {
		n, _ := CurrentName()
		inside <- n
		<-release
	})
	require.NoError(t, err)

	assert.Equal(t, "hioload-test", <-inside)
	n, err := th.Name()
	require.NoError(t, err)
	assert.Equal(t, "hioload-test", n)

	close(release)
	<-th.Done()

	// dead threads fall back to the recorded name
	n, err = th.Name()
	require.NoError(t, err)
	assert.Equal(t, "hioload-test", n)
}

func TestSpawnTruncatesLongName(t *testing.T) {
	var s Spawner
	inside := make(chan string, 1)
	th, err := s.Spawn(Attr{Name: "a-rather-long-thread-name"}, nil, func(*Thread) {
		n, _ := CurrentName()
		inside <- n
	})
	require.NoError(t, err)
	<-th.Done()
	assert.Equal(t, "a-rather-long-t", <-inside)
}

func TestSpawnAffinityOutOfRange(t *testing.T) {
	var s Spawner
	ran := false
	_, err := s.Spawn(Attr{CPUs: []int{-1}}, nil, func(*Thread) { ran = true })
	var bu *BringUpError
	require.ErrorAs(t, err, &bu)
	assert.Equal(t, StepAffinity, bu.Step)
	assert.False(t, ran)
	assert.Zero(t, s.Live())
}
