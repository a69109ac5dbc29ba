package database

import (
	"errors"
	"sync"
)

var pools = struct {
	mu   sync.Mutex
	open map[*DB]struct{}
}{open: make(map[*DB]struct{})}

func track(db *DB) {
	pools.mu.Lock()
	pools.open[db] = struct{}{}
	pools.mu.Unlock()
}

func untrack(db *DB) {
	pools.mu.Lock()
	delete(pools.open, db)
	pools.mu.Unlock()
}

// OpenPools returns the number of pools opened in this process and not yet closed.
func OpenPools() int {
	pools.mu.Lock()
	defer pools.mu.Unlock()
	return len(pools.open)
}

// ReleaseAll closes every pool still open in the process and returns how
// many were released. Close errors are joined.
func ReleaseAll() (int, error) {
	pools.mu.Lock()
	open := make([]*DB, 0, len(pools.open))
	for db := range pools.open {
		open = append(open, db)
	}
	pools.mu.Unlock()

	var errs []error
	for _, db := range open {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return len(open), errors.Join(errs...)
}
