// Package goroutine provides panic recovery for background work.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/metashield/jirasync/internal/shared/logger"
)

// Recover logs a recovered panic with its stack trace instead of letting it
// crash the process. It must be deferred directly.
func Recover(log logger.Interface, name string) {
	if r := recover(); r != nil {
		log.Errorw("goroutine panicked",
			"goroutine", name,
			"panic", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)
	}
}
