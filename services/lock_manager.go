package services

import "sync"

// LockManager hands out one mutex per bracket id.
type LockManager struct {
	locks sync.Map
}

func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns the mutex for key, creating it on first use.
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Forget drops the mutex for key. Callers must hold it.
func (lm *LockManager) Forget(key string) {
	lm.locks.Delete(key)
}
