package app

import (
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "AIRWATCH_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether binaries should skip starting servers and workers.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode re-reads AIRWATCH_TEST_MODE after environment changes.
func RefreshTestMode() {
	detectTestMode()
}
