// Package accel provides utilities for batched bulk writes.
package accel

// DefaultBatchSize is used when a non-positive size is requested
const DefaultBatchSize = 100

// Batch splits bulk work into fixed-size chunks
type Batch struct {
	size int
}

// NewBatch creates a new batch processor with the given size
func NewBatch(size int) *Batch {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &Batch{size: size}
}

// Size returns the batch size
func (b *Batch) Size() int {
	return b.size
}

// Split returns consecutive chunks of items, each at most b.Size() long.
// Chunks share the backing array of items.
func Split[T any](b *Batch, items []T) [][]T {
	if len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(items)+b.size-1)/b.size)
	for start := 0; start < len(items); start += b.size {
		end := start + b.size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

// Each calls fn for every chunk in order, stopping at the first error
func Each[T any](b *Batch, items []T, fn func(chunk []T) error) error {
	for _, chunk := range Split(b, items) {
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}
