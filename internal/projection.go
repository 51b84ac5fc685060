package internal

import "sync"

// Ticket orders list-bearing requests by the time they were issued
type Ticket uint64

// TaskListProjection is the read-only task view derived from the most
// recent list-bearing reply. It is replaced wholesale on every apply and
// never edited in place.
type TaskListProjection struct {
	mu      sync.RWMutex
	tasks   []Task
	issued  Ticket
	applied Ticket
	loaded  bool
}

// NewTaskListProjection creates an empty projection
func NewTaskListProjection() *TaskListProjection {
	return &TaskListProjection{tasks: []Task{}}
}

// Begin issues a ticket for a request that is about to be sent
func (p *TaskListProjection) Begin() Ticket {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued++
	return p.issued
}

// Apply replaces the task list with tasks if ticket is newer than the last
// applied one. Replies that resolve out of order are dropped so the view
// always matches the most recently issued request that succeeded.
func (p *TaskListProjection) Apply(ticket Ticket, tasks []Task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ticket <= p.applied {
		LogDebug("dropping stale task list (ticket %d, applied %d)", ticket, p.applied)
		return false
	}
	replacement := make([]Task, len(tasks))
	copy(replacement, tasks)
	p.tasks = replacement
	p.applied = ticket
	p.loaded = true
	return true
}

// Tasks returns a copy of the current task list
func (p *TaskListProjection) Tasks() []Task {
	p.mu.RLock()
	defer p.mu.RUnlock()

	tasks := make([]Task, len(p.tasks))
	copy(tasks, p.tasks)
	return tasks
}

// Version returns the ticket of the applied list, 0 before the first load
func (p *TaskListProjection) Version() Ticket {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.applied
}

// Loaded reports whether any list has been applied yet
func (p *TaskListProjection) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}

// Empty reports whether the current list has no tasks
func (p *TaskListProjection) Empty() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tasks) == 0
}
