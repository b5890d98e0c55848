package registry_test

import (
	"bytes"
	"sync"

	"github.com/viant/gmetric"
	"github.com/viant/gmetric/stat"
)

// syncBuffer is a bytes.Buffer safe for use as a slog handler sink in parallel tests.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// errorCount returns the error counter of op.
func errorCount(op gmetric.Operation) int64 {
	for _, v := range op.Counters {
		if v.Value == stat.ErrorKey {
			return v.CountValue()
		}
	}
	return 0
}
