package services

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/belajar-alkitab-backend/internal/modules/learning/completion"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
)

type progressKey struct {
	user   uuid.UUID
	module uuid.UUID
}

// ProgressCache memoizes module completion summaries per (user, module).
// Entries are only ever invalidated, never updated in place.
//
// Every invalidation is stamped with a sequence number. A summary computed
// from reads that began at generation g is only stored when nothing it
// covers was invalidated after g.
type ProgressCache struct {
	mu      sync.RWMutex
	entries map[progressKey]completion.Summary

	seq       uint64
	keyGen    map[progressKey]uint64
	userGen   map[uuid.UUID]uint64
	moduleGen map[uuid.UUID]uint64
}

func NewProgressCache() *ProgressCache {
	return &ProgressCache{
		entries:   make(map[progressKey]completion.Summary),
		keyGen:    make(map[progressKey]uint64),
		userGen:   make(map[uuid.UUID]uint64),
		moduleGen: make(map[uuid.UUID]uint64),
	}
}

func (c *ProgressCache) Get(userID, moduleID uuid.UUID) (completion.Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[progressKey{userID, moduleID}]
	return s, ok
}

func (c *ProgressCache) Put(userID, moduleID uuid.UUID, s completion.Summary) {
	c.mu.Lock()
	c.entries[progressKey{userID, moduleID}] = s
	c.mu.Unlock()
}

// Generation is taken before reading the rows a summary is built from.
func (c *ProgressCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seq
}

// PutIfFresh stores s unless (userID, moduleID) was invalidated after gen.
func (c *ProgressCache) PutIfFresh(userID, moduleID uuid.UUID, gen uint64, s completion.Summary) bool {
	k := progressKey{userID, moduleID}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.keyGen[k] > gen || c.userGen[userID] > gen || c.moduleGen[moduleID] > gen {
		return false
	}
	c.entries[k] = s
	return true
}

func (c *ProgressCache) InvalidateUserModule(userID, moduleID uuid.UUID) {
	k := progressKey{userID, moduleID}
	c.mu.Lock()
	c.seq++
	c.keyGen[k] = c.seq
	delete(c.entries, k)
	c.mu.Unlock()
}

func (c *ProgressCache) InvalidateUser(userID uuid.UUID) {
	c.mu.Lock()
	c.seq++
	c.userGen[userID] = c.seq
	for k := range c.entries {
		if k.user == userID {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// InvalidateModule drops every user's entry for moduleID, e.g. after its
// session set changed.
func (c *ProgressCache) InvalidateModule(moduleID uuid.UUID) {
	c.mu.Lock()
	c.seq++
	c.moduleGen[moduleID] = c.seq
	for k := range c.entries {
		if k.module == moduleID {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Apply invalidates whatever ev may have made stale.
func (c *ProgressCache) Apply(ev realtime.ChangeEvent) {
	switch ev.Kind {
	case realtime.SSEEventProgressChanged:
		switch {
		case ev.UserID != uuid.Nil && ev.ModuleID != uuid.Nil:
			c.InvalidateUserModule(ev.UserID, ev.ModuleID)
		case ev.UserID != uuid.Nil:
			c.InvalidateUser(ev.UserID)
		}
	case realtime.SSEEventSessionChanged, realtime.SSEEventSessionDeleted, realtime.SSEEventModuleDeleted:
		if ev.ModuleID != uuid.Nil {
			c.InvalidateModule(ev.ModuleID)
		}
	}
}

func (c *ProgressCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
