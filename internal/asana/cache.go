package asana

import (
	"sync"
	"time"
)

type cacheEntry struct {
	tasks     []Task
	fetchedAt time.Time
}

// TaskCache keeps the tasks of each project for a fixed TTL.
type TaskCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewTaskCache(ttl time.Duration) *TaskCache {
	return &TaskCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *TaskCache) Get(projectID string) []Task {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[projectID]
	if !ok || c.ttl <= 0 || c.now().Sub(e.fetchedAt) > c.ttl {
		return nil
	}

	result := make([]Task, len(e.tasks))
	copy(result, e.tasks)
	return result
}

func (c *TaskCache) Set(projectID string, tasks []Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]Task, len(tasks))
	copy(stored, tasks)
	c.entries[projectID] = cacheEntry{tasks: stored, fetchedAt: c.now()}
}

func (c *TaskCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}
