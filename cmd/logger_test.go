package cmd

import "testing"

func TestNewLoggerDevelopment(t *testing.T) {
	t.Parallel()

	logger, err := newLogger(true)
	if err != nil {
		t.Fatalf("newLogger(true) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Debug("development logger ready")
}

func TestNewLoggerProduction(t *testing.T) {
	t.Parallel()

	logger, err := newLogger(false)
	if err != nil {
		t.Fatalf("newLogger(false) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("production logger ready")
}
