// Package guard flips the binaries into test mode when imported from a test,
// so calling main() returns before touching Postgres, Redis or the network.
package guard

import (
	"os"
	"sync"
)

const testModeEnv = "PAVILION_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(testModeEnv) == "" {
			_ = os.Setenv(testModeEnv, "1")
		}
	})
}
