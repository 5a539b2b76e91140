// Package handlers implements the HTTP API layer of taskengine.
//
// Handlers delegate to the services layer and focus on request validation, response
// formatting and HTTP semantics.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Request validation and rate limiting                         │
//	│  - Parameter parsing                                            │
//	│  - Error mapping to HTTP status codes                           │
//	│  - Model-to-API conversion                                      │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Services Layer                             │
//	│  Loader │ Monitor │ HistoryService                              │
//	└─────────────────────────────────────────────────────────────────┘
//
// The Handler implements v1.ServerInterface and is registered with:
//
//	v1.RegisterHandlers(router, handler)
//
// # API Endpoints
//
//	┌────────┬────────────────┬─────────────────────────────────────────────┐
//	│ Method │ Endpoint       │ Description                                 │
//	├────────┼────────────────┼─────────────────────────────────────────────┤
//	│ GET    │ /workers       │ Worker statuses, queue length and order     │
//	│ GET    │ /loads         │ Loads tracked in memory                     │
//	│ POST   │ /loads         │ Schedule a file load (202, rate limited)    │
//	│ GET    │ /loads/{id}    │ Load progress, never blocks                 │
//	│ DELETE │ /loads/{id}    │ Release a load, abandoning it if running    │
//	│ GET    │ /history       │ Task history with filters and pagination    │
//	│ GET    │ /history/{id}  │ One task record                             │
//	└────────┴────────────────┴─────────────────────────────────────────────┘
//
// # Loads
//
// POST /loads:
//
//	{ "path": "/var/log/messages" }
//
// Response (202 Accepted, Location: /api/v1/loads/{id}):
//
//	{ "id": "5b0c..." }
//
// GET /loads/{id}:
//
//	{
//	    "id": "5b0c...",
//	    "path": "/var/log/messages",
//	    "state": "reading",      // pending|reading|hashing|completed|error|failed
//	    "read": 8192,
//	    "size": 10000,
//	    "percent": 81.92,
//	    "createdAt": "2025-01-01T10:00:00Z",
//	    "checksum": null,        // sha256, once completed
//	    "error": null
//	}
//
// # History
//
// GET /history query parameters:
//
//	┌──────────┬──────────┬─────────────────────────────────────────────┐
//	│ Parameter│ Type     │ Description                                 │
//	├──────────┼──────────┼─────────────────────────────────────────────┤
//	│ outcome  │ []string │ completed, abandoned, panicked (OR logic)   │
//	│ name     │ string   │ Task name prefix                            │
//	│ since    │ RFC 3339 │ Finished at or after                        │
//	│ page     │ int      │ Page number (default: 1)                    │
//	│ pageSize │ int      │ Items per page (default: 20, max: 100)      │
//	└──────────┴──────────┴─────────────────────────────────────────────┘
//
// # Error Handling
//
//	{ "error": "error message" }
//
//	┌─────────────────────────────┬────────┬──────────────────────────────┐
//	│ Error Type                  │ Status │ When                         │
//	├─────────────────────────────┼────────┼──────────────────────────────┤
//	│ Validation error            │ 400    │ Invalid body or parameters   │
//	│ InvalidArgumentError        │ 400    │ Rejected by a service        │
//	│ ResourceNotFoundError       │ 404    │ Unknown load or record       │
//	│ Rate limit                  │ 429    │ Too many POST /loads         │
//	│ ServiceUnavailableError     │ 503    │ Service cannot serve now     │
//	│ Internal error              │ 500    │ Unexpected service errors    │
//	└─────────────────────────────┴────────┴──────────────────────────────┘
package handlers
