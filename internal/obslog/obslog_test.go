package obslog

import "testing"

func TestNewDefaultDoesNotPanic(t *testing.T) {
	t.Parallel()
	l := Default()
	l.Info("hello", "k", "v")
	l.With("request_id", "abc").Warn("degraded")
}

func TestLevelMapping(t *testing.T) {
	t.Parallel()
	l := New(Config{Level: LevelError, JSON: true, Service: "test"})
	l.Debug("should be filtered")
	l.Error("boom", "code", 500)
}
