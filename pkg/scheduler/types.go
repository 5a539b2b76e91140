package scheduler

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ThreadStatus is what a worker is doing right now. It is only written by the worker itself
// and is meant for diagnostics.
type ThreadStatus int32

const (
	StatusIdle ThreadStatus = iota
	StatusPolling
	StatusWorking
	StatusScheduling
	StatusStopped
)

func (s ThreadStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPolling:
		return "polling"
	case StatusWorking:
		return "working"
	case StatusScheduling:
		return "scheduling"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Order selects the end of the queue workers pop from.
type Order int

const (
	// OrderLIFO pops from the end tasks are pushed to. Recently scheduled or requeued tasks
	// run first and old ones can starve under sustained load.
	OrderLIFO Order = iota
	// OrderFIFO pops from the other end.
	OrderFIFO
)

func (o Order) String() string {
	if o == OrderFIFO {
		return "fifo"
	}
	return "lifo"
}

// ParseOrder converts "lifo" or "fifo" to an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "lifo", "":
		return OrderLIFO, nil
	case "fifo":
		return OrderFIFO, nil
	default:
		return OrderLIFO, fmt.Errorf("invalid queue order: %s", s)
	}
}

// EventKind is the way a task left the scheduler.
type EventKind int

const (
	EventCompleted EventKind = iota
	EventAbandoned
	EventPanicked
)

func (k EventKind) String() string {
	switch k {
	case EventCompleted:
		return "completed"
	case EventAbandoned:
		return "abandoned"
	case EventPanicked:
		return "panicked"
	default:
		return "unknown"
	}
}

// Event describes a task leaving the scheduler.
// Worker is -1 when the task was driven by RunOnce or discarded at pop time.
type Event struct {
	TaskID      uuid.UUID
	Name        string
	Kind        EventKind
	Worker      int
	Resumes     int64
	ScheduledAt time.Time
	FinishedAt  time.Time
	Err         error
}

// Observer is notified when a task completes, is abandoned or panics.
// Observe is called from worker goroutines, sometimes with the queue lock held: it must not
// block and must not call back into the Scheduler.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// TaskPanicError is the value a panicking task leaves behind. Waiting on its Future panics
// with it.
type TaskPanicError struct {
	TaskID uuid.UUID
	Name   string
	Value  any
	Stack  []byte
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("task %s (%s) panicked: %v", e.Name, e.TaskID, e.Value)
}

// WorkerExit tells how a worker goroutine ended.
type WorkerExit struct {
	ID    int
	Panic any
	Stack []byte
}

// Panicked reports whether the worker died from a panic.
func (e WorkerExit) Panicked() bool {
	return e.Panic != nil
}

// Option configures a Scheduler.
type Option func(*config)

type config struct {
	order    Order
	observer Observer
}

// WithOrder sets the pop order. The default is OrderLIFO.
func WithOrder(o Order) Option {
	return func(c *config) {
		c.order = o
	}
}

// WithObserver registers an observer for task events.
func WithObserver(o Observer) Option {
	return func(c *config) {
		c.observer = o
	}
}

// ScheduleOption configures a single scheduled task.
type ScheduleOption func(*scheduleConfig)

type scheduleConfig struct {
	name string
}

// WithName labels the task in logs and events.
func WithName(name string) ScheduleOption {
	return func(c *scheduleConfig) {
		c.name = name
	}
}
