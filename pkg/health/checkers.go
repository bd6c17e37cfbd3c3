package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails when the number of goroutines exceeds threshold,
// a cheap proxy for goroutine leaks.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(context.Context) error {
		if count := runtime.NumGoroutine(); count > threshold {
			return errors.Errorf("too many goroutines: %d > %d", count, threshold)
		}
		return nil
	}
}
