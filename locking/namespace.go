package locking

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dogmatiq/linger"
)

// DefaultTimeout is the default amount of time to wait to acquire a lock
// before giving up.
const DefaultTimeout = 30 * time.Second

// UnlockFunc is a function used to release a previously acquired lock.
//
// It is safe to call multiple times; calls after the first are no-ops.
type UnlockFunc func()

// Namespace is a set of named, context-aware locks.
//
// Locks are created on demand and removed again once no goroutine holds or is
// waiting for them, so an idle namespace does not accumulate state.
type Namespace struct {
	m     sync.Mutex
	locks map[Key]*lock
}

// lock is a single named lock.
type lock struct {
	guard   chan struct{} // buffered guard, write = lock, read = unlock
	lockers int64         // number of pending or successful Lock() calls
}

// Lock acquires an exclusive lock on the resource identified by k.
//
// It returns an unlock function which must be called to release the lock.
//
// If the lock is already held, Lock() blocks until it is released, or ctx is
// canceled.
func (ns *Namespace) Lock(ctx context.Context, k Key) (UnlockFunc, error) {
	l := ns.get(k)

	select {
	case <-ctx.Done():
		ns.release(k, l)
		return nil, ctx.Err()

	case l.guard <- struct{}{}: // acquire the lock
		var once sync.Once
		return func() {
			once.Do(func() {
				<-l.guard // release the lock
				ns.release(k, l)
			})
		}, nil
	}
}

// LockFor acquires an exclusive lock on the resource identified by k, giving
// up if the lock can not be acquired within the timeout d.
//
// If d is zero, DefaultTimeout is used. The timeout bounds acquisition only;
// once acquired the lock is held until the unlock function is called.
func (ns *Namespace) LockFor(ctx context.Context, k Key, d time.Duration) (UnlockFunc, error) {
	ctx, cancel := linger.ContextWithTimeout(ctx, d, DefaultTimeout)
	defer cancel()

	return ns.Lock(ctx, k)
}

// get returns the lock for k, creating it if necessary.
func (ns *Namespace) get(k Key) *lock {
	ns.m.Lock()
	defer ns.m.Unlock()

	if ns.locks == nil {
		ns.locks = map[Key]*lock{}
	} else if l, ok := ns.locks[k]; ok {
		atomic.AddInt64(&l.lockers, 1)
		return l
	}

	l := &lock{
		guard:   make(chan struct{}, 1),
		lockers: 1,
	}

	ns.locks[k] = l

	return l
}

// release decrements the locker count on l and removes it from ns.locks if
// there are no other lockers.
func (ns *Namespace) release(k Key, l *lock) {
	// Remove ourselves from the locker count. If the result is non-zero then
	// there are other pending Lock() calls that will take ownership, so
	// there's nothing left to do.
	if atomic.AddInt64(&l.lockers, -1) > 0 {
		return
	}

	// Otherwise, we have to remove the lock from the map.
	ns.m.Lock()

	// But before we do, we make sure no new locker came along while we were
	// waiting to acquire ns.m. Note that we can check this here because
	// l.lockers is only INCREMENTED while ns.m is held.
	if atomic.LoadInt64(&l.lockers) == 0 {
		delete(ns.locks, k)
	}

	ns.m.Unlock()
}
