package indexer

import "sync"

// Cursor is the last processed ledger version. It only moves forward.
type Cursor struct {
	mu      sync.RWMutex
	version uint64
	set     bool
}

// Position returns the cursor and whether it has been initialized.
func (c *Cursor) Position() (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version, c.set
}

// Next is the first version that has not been processed yet.
func (c *Cursor) Next() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.set {
		return 0
	}
	return c.version + 1
}

// Init sets the starting position once; later calls keep the larger value.
func (c *Cursor) Init(version uint64) {
	c.Advance(version)
}

// Advance moves the cursor to version if that is ahead of the current value.
func (c *Cursor) Advance(version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set && version <= c.version {
		return false
	}
	c.version = version
	c.set = true
	return true
}
