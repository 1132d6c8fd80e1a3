package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	mu      sync.Mutex
	idle    []string
	maxIdle time.Duration
	left    int
}

func (f *fakeSessions) EvictIdle(maxIdle time.Duration) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maxIdle = maxIdle
	evicted := f.idle
	f.idle = nil
	return evicted
}

func (f *fakeSessions) Sessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.left
}

type recordingForgetter struct {
	mu     sync.Mutex
	forgot []string
}

func (r *recordingForgetter) Forget(sessionID string) {
	r.mu.Lock()
	r.forgot = append(r.forgot, sessionID)
	r.mu.Unlock()
}

func (r *recordingForgetter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forgot)
}

func TestSessionSweeper_RunOnceForgetsEvictedSessions(t *testing.T) {
	sessions := &fakeSessions{idle: []string{"a", "b"}, left: 3}
	checkouts := &recordingForgetter{}
	s := NewSessionSweeper(sessions, "@every 1h", 30*time.Minute, checkouts)

	assert.Equal(t, 2, s.RunOnce())
	assert.Equal(t, 30*time.Minute, sessions.maxIdle)
	assert.Equal(t, []string{"a", "b"}, checkouts.forgot)

	assert.Equal(t, 0, s.RunOnce())
	assert.Len(t, checkouts.forgot, 2)
}

func TestSessionSweeper_InvalidSpec(t *testing.T) {
	s := NewSessionSweeper(&fakeSessions{}, "every now and then", time.Minute)
	assert.Error(t, s.Start())
}

func TestSessionSweeper_StartRunsJob(t *testing.T) {
	checkouts := &recordingForgetter{}
	s := NewSessionSweeper(&fakeSessions{idle: []string{"a"}}, "@every 1s", time.Minute, checkouts)

	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	require.Eventually(t, func() bool {
		return checkouts.count() == 1
	}, 3*time.Second, 50*time.Millisecond)
}
