package sinklog

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain fails the package if a daily rotation goroutine outlives its logger
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
