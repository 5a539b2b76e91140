package models

import "time"

// LoadState represents the current state of a file load.
type LoadState string

const (
	// LoadStatePending - waiting for the file to show up
	LoadStatePending LoadState = "pending"
	// LoadStateReading - the file is being read chunk by chunk
	LoadStateReading LoadState = "reading"
	// LoadStateHashing - the file was read, its checksum is being computed
	LoadStateHashing LoadState = "hashing"
	// LoadStateCompleted - the checksum is available
	LoadStateCompleted LoadState = "completed"
	// LoadStateError - the file could not be read
	LoadStateError LoadState = "error"
	// LoadStateFailed - the load task panicked
	LoadStateFailed LoadState = "failed"
)

// LoadResult is the outcome of a completed load.
type LoadResult struct {
	Size     int64
	Checksum string
}

// LoadStatus holds the progress of a load.
type LoadStatus struct {
	ID        string
	Path      string
	State     LoadState
	Read      int64
	Size      int64
	CreatedAt time.Time
	Result    *LoadResult
	Error     error
}

// Percent returns the share of the file read so far, 100 for an empty file.
func (s LoadStatus) Percent() float64 {
	if s.Size == 0 {
		if s.State == LoadStatePending || s.State == LoadStateReading {
			return 0
		}
		return 100
	}
	return float64(s.Read) * 100 / float64(s.Size)
}
