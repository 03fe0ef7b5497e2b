package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("COMA_TEST_MODE") == "" {
			_ = os.Setenv("COMA_TEST_MODE", "1")
		}
	})
}
