package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/duncaneddy/SATPLAN/model"
)

var (
	// ErrExists indicates a constellation for the key is already stored.
	ErrExists = errors.New("constellation already cataloged")
	// ErrNilRecord indicates an attempt to store a nil record.
	ErrNilRecord = errors.New("nil constellation record")
)

// EventType indicates what kind of change happened in the catalog.
type EventType int

const (
	EventConstellationAdded EventType = iota
)

// Key identifies one dataset: an inclination family and a requested size.
type Key struct {
	Family string
	Size   int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Family, k.Size)
}

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type   EventType
	Key    Key
	Path   string
	Record *model.ConstellationRecord
	// Count is the number of cataloged constellations after the change.
	Count int
}

// Entry is a cataloged constellation together with where it was written.
type Entry struct {
	Key    Key
	Path   string
	Record *model.ConstellationRecord
}

// Catalog is an in-memory, thread-safe store of assembled constellations.
// Records are treated as immutable once added.
type Catalog struct {
	mu sync.RWMutex

	entries map[Key]Entry

	subs   map[int]func(Event)
	nextID int
}

// New constructs an empty catalog.
func New() *Catalog {
	return &Catalog{
		entries: make(map[Key]Entry),
		subs:    make(map[int]func(Event)),
	}
}

// Add stores a record. It returns ErrExists if the key is already present.
func (c *Catalog) Add(key Key, path string, rec *model.ConstellationRecord) error {
	if rec == nil {
		return ErrNilRecord
	}
	c.mu.Lock()
	if _, exists := c.entries[key]; exists {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrExists, key)
	}
	c.entries[key] = Entry{Key: key, Path: path, Record: rec}
	event := Event{
		Type:   EventConstellationAdded,
		Key:    key,
		Path:   path,
		Record: rec,
		Count:  len(c.entries),
	}
	subs := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// Get returns the entry for key.
func (c *Catalog) Get(key Key) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Len returns the number of cataloged constellations.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// List returns a snapshot ordered by family, then size.
func (c *Catalog) List() []Entry {
	c.mu.RLock()
	res := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		res = append(res, e)
	}
	c.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool {
		if res[i].Key.Family != res[j].Key.Family {
			return res[i].Key.Family < res[j].Key.Family
		}
		return res[i].Key.Size < res[j].Key.Size
	})
	return res
}

// Subscribe registers a callback for catalog events. It returns an
// unsubscribe function.
func (c *Catalog) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}
