package importer

import "sync"

// keyedMutex is a map of per-key mutexes, reference-counted so idle keys
// don't accumulate forever. It is the mechanism spec §4.7's "only the
// winner performs positionStore.merge calls" depends on: two concurrent
// imports of the same game id serialize here before either one touches
// gameInfoStore/pgnStore, so the loser's dedup check always observes the
// winner's completed write rather than racing it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	mu  sync.Mutex
	ref int
}

// Lock blocks until key is uncontended, then returns the function that
// releases it.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	rm, ok := k.locks[key]
	if !ok {
		rm = &refMutex{}
		k.locks[key] = rm
	}
	rm.ref++
	k.mu.Unlock()

	rm.mu.Lock()
	return func() {
		rm.mu.Unlock()
		k.mu.Lock()
		rm.ref--
		if rm.ref == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
