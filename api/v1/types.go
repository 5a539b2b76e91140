package v1

import "time"

// Error is the body of every non-2xx response.
type Error struct {
	Error string `json:"error"`
}

// Worker is the status of one pool worker.
type Worker struct {
	Id    int    `json:"id"`
	State string `json:"state"`
}

// PoolStatus is the body of GET /workers.
type PoolStatus struct {
	Order   string   `json:"order"`
	Queued  int      `json:"queued"`
	Alive   int      `json:"alive"`
	Workers []Worker `json:"workers"`
}

// CreateLoadRequest is the body of POST /loads.
type CreateLoadRequest struct {
	Path string `json:"path" binding:"required"`
}

// LoadCreated is the body of a 202 response to POST /loads.
type LoadCreated struct {
	Id string `json:"id"`
}

// Load is the status of a file load.
type Load struct {
	Id        string    `json:"id"`
	Path      string    `json:"path"`
	State     string    `json:"state"`
	Read      int64     `json:"read"`
	Size      int64     `json:"size"`
	Percent   float64   `json:"percent"`
	CreatedAt time.Time `json:"createdAt"`
	Checksum  *string   `json:"checksum,omitempty"`
	Error     *string   `json:"error,omitempty"`
}

// LoadList is the body of GET /loads.
type LoadList struct {
	Loads []Load `json:"loads"`
}

// TaskRecord is one entry of the task history.
type TaskRecord struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Outcome     string    `json:"outcome"`
	Worker      int       `json:"worker"`
	Resumes     int64     `json:"resumes"`
	ScheduledAt time.Time `json:"scheduledAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	DurationMs  int64     `json:"durationMs"`
	Error       *string   `json:"error,omitempty"`
}

// HistoryListResponse is the body of GET /history.
type HistoryListResponse struct {
	Page      int          `json:"page"`
	PageCount int          `json:"pageCount"`
	Total     int          `json:"total"`
	Records   []TaskRecord `json:"records"`
}

// ListHistoryParams are the query parameters of GET /history.
type ListHistoryParams struct {
	Outcome  []string `form:"outcome"`
	Name     string   `form:"name"`
	Since    string   `form:"since"`
	Page     int      `form:"page"`
	PageSize int      `form:"pageSize"`
}
