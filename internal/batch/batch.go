// Package batch splits row slices into bounded runs for bulk graph writes.
package batch

// Chunk splits items into consecutive runs of at most size elements,
// preserving order. Every run except the last holds exactly size elements;
// the last holds the remainder. Runs are subslices of the input backing
// array, so chunking allocates only the outer slice. An empty or nil input
// yields no runs. size must be positive; a non-positive size is a programmer
// error and panics.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		panic("batch: chunk size must be positive")
	}
	if len(items) == 0 {
		return nil
	}

	numChunks := (len(items) + size - 1) / size
	chunks := make([][]T, 0, numChunks)
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}
