// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package cache implements the least-frequently-used word cache that sits
// in front of the emulator memory for instruction fetch and data access.
//
// Entries are grouped into frequency buckets. Each bucket is ordered by
// recency, most recently touched first, so that eviction removes the least
// recently touched entry of the least frequently used bucket.
package cache

import (
	"container/list"
	"log"

	"github.com/sarchlab/akita/v4/sim"
)

// Hook positions published by the cache.
var (
	HookPosHit   = &sim.HookPos{Name: "Cache Hit"}
	HookPosMiss  = &sim.HookPos{Name: "Cache Miss"}
	HookPosPut   = &sim.HookPos{Name: "Cache Put"}
	HookPosEvict = &sim.HookPos{Name: "Cache Evict"}
)

// Access is the hook item describing a single cache event.
type Access struct {
	Addr      uint32 // Address looked up, inserted or evicted.
	Value     uint32 // Value associated with the address, if any.
	Frequency int    // Frequency count after the event.
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads     uint64
	Writes    uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

type entry struct {
	addr  uint32
	value uint32
	freq  int
}

// Cache is a fixed capacity LFU cache mapping 32-bit addresses to 32-bit values.
type Cache struct {
	*sim.HookableBase

	Verbose bool // If set, logs every cache event.

	name     string
	capacity int
	minFreq  int
	entries  map[uint32]*list.Element
	buckets  map[int]*list.List
	stats    Statistics
}

// New creates an empty cache. A capacity of zero creates a cache that
// never stores anything.
func New(name string, capacity int) (c *Cache) {
	if capacity < 0 {
		capacity = 0
	}

	c = &Cache{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		capacity:     capacity,
		entries:      make(map[uint32]*list.Element, capacity),
		buckets:      make(map[int]*list.List),
	}

	return
}

// Name returns the name given at construction.
func (c *Cache) Name() string {
	return c.name
}

// Capacity returns the maximum number of entries.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// Reset drops every entry and clears the statistics.
func (c *Cache) Reset() {
	clear(c.entries)
	clear(c.buckets)
	c.minFreq = 0
	c.stats = Statistics{}
}

// Frequency returns the access frequency of an address, without touching it.
func (c *Cache) Frequency(addr uint32) (freq int, ok bool) {
	elem, ok := c.entries[addr]
	if !ok {
		return
	}

	freq = elem.Value.(*entry).freq
	return
}

// Get looks up an address. On a hit the entry's frequency is incremented
// and ok is true; on a miss ok is false and the cache is left unchanged.
func (c *Cache) Get(addr uint32) (value uint32, ok bool) {
	c.stats.Reads++

	elem, ok := c.entries[addr]
	if !ok {
		c.stats.Misses++
		c.invoke(HookPosMiss, Access{Addr: addr})
		return
	}

	c.stats.Hits++
	ent := c.touch(elem)
	value = ent.value

	c.invoke(HookPosHit, Access{Addr: addr, Value: value, Frequency: ent.freq})

	return
}

// Put inserts or updates an address. Updating an existing entry counts as a
// use of that entry. Inserting into a full cache first evicts the least
// recently touched entry of the lowest frequency.
func (c *Cache) Put(addr uint32, value uint32) {
	if c.capacity == 0 {
		return
	}

	c.stats.Writes++

	elem, ok := c.entries[addr]
	if ok {
		ent := c.touch(elem)
		ent.value = value
		c.invoke(HookPosPut, Access{Addr: addr, Value: value, Frequency: ent.freq})
		return
	}

	if len(c.entries) >= c.capacity {
		c.evict()
	}

	ent := &entry{addr: addr, value: value, freq: 1}
	c.entries[addr] = c.bucket(1).PushFront(ent)
	c.minFreq = 1

	c.invoke(HookPosPut, Access{Addr: addr, Value: value, Frequency: 1})
}

// bucket returns the recency list for a frequency, creating it as needed.
func (c *Cache) bucket(freq int) (l *list.List) {
	l, ok := c.buckets[freq]
	if !ok {
		l = list.New()
		c.buckets[freq] = l
	}

	return
}

// touch moves an entry to the front of the next frequency bucket.
func (c *Cache) touch(elem *list.Element) (ent *entry) {
	ent = elem.Value.(*entry)

	old := c.buckets[ent.freq]
	old.Remove(elem)
	if old.Len() == 0 {
		delete(c.buckets, ent.freq)
		if c.minFreq == ent.freq {
			c.minFreq++
		}
	}

	ent.freq++
	c.entries[ent.addr] = c.bucket(ent.freq).PushFront(ent)

	return
}

// evict removes the victim entry: the back of the minimum frequency bucket.
func (c *Cache) evict() {
	l, ok := c.buckets[c.minFreq]
	if !ok || l.Len() == 0 {
		return
	}

	ent := l.Remove(l.Back()).(*entry)
	if l.Len() == 0 {
		delete(c.buckets, c.minFreq)
	}
	delete(c.entries, ent.addr)

	c.stats.Evictions++
	c.invoke(HookPosEvict, Access{Addr: ent.addr, Value: ent.value, Frequency: ent.freq})
}

func (c *Cache) invoke(pos *sim.HookPos, access Access) {
	if c.Verbose {
		log.Printf("%v: %v 0x%08x = 0x%08x (freq %d)", c.name, pos.Name, access.Addr, access.Value, access.Frequency)
	}

	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   access,
	})
}
