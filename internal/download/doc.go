package download

// Package download implements the bounded-concurrency download pipeline:
// submitted requests wait in a FIFO queue, a semaphore admits up to
// maxConcurrent of them, and each admitted task streams its archive to disk
// while emitting throttled progress snapshots. Cancellation of a running
// transfer is advisory only; the task is marked failed but the stream runs
// to completion.
