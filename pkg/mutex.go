package pkg

import "sync"

type HasLocker interface{ GetLocker() *sync.RWMutex }

func LockWrap(i HasLocker, f func()) {
	i.GetLocker().Lock()
	defer i.GetLocker().Unlock()
	f()
}

func RLockWrap(i HasLocker, f func()) {
	i.GetLocker().RLock()
	defer i.GetLocker().RUnlock()
	f()
}

// LockWrapResult runs f under the write lock and returns its results.
func LockWrapResult[T any](i HasLocker, f func() (T, error)) (res T, err error) {
	LockWrap(i, func() { res, err = f() })
	return
}
