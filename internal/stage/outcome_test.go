package stage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunOK(t *testing.T) {
	out := Run("score", func() (int, error) { return 42, nil }, func() int { return -1 })
	assert.False(t, out.Degraded)
	assert.Equal(t, 42, out.Value)
	assert.Empty(t, out.Reason)
}

func TestRunError(t *testing.T) {
	out := Run("score", func() (int, error) { return 0, errors.New("boom") }, func() int { return 15 })
	assert.True(t, out.Degraded)
	assert.Equal(t, 15, out.Value)
	assert.Contains(t, out.Reason, "boom")
}

func TestRunPanic(t *testing.T) {
	out := Run("diagnose", func() (string, error) {
		var m map[string]int
		m["x"] = 1
		return "unreachable", nil
	}, func() string { return "basic" })
	assert.True(t, out.Degraded)
	assert.Equal(t, "basic", out.Value)
	assert.Equal(t, "diagnose: internal error", out.Reason)
}

func TestFallbackNotCalledOnSuccess(t *testing.T) {
	called := false
	Run("x", func() (bool, error) { return true, nil }, func() bool { called = true; return false })
	assert.False(t, called)
}
