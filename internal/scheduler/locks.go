package scheduler

import "sync"

// AccountLocks guarantees at most one running session per account. Locks are
// process local and advisory: the dispatcher takes one before leasing a
// browser session and releases it when the session ends.
type AccountLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewAccountLocks creates an empty lock registry.
func NewAccountLocks() *AccountLocks {
	return &AccountLocks{held: map[string]struct{}{}}
}

// TryLock acquires the lock for the account without blocking. It returns
// false when the account already has a running session.
func (l *AccountLocks) TryLock(accountID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[accountID]; ok {
		return false
	}
	l.held[accountID] = struct{}{}
	return true
}

// Unlock releases the account's lock. Unlocking a free account is a no-op.
func (l *AccountLocks) Unlock(accountID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, accountID)
}

// Locked reports whether the account currently has a running session.
func (l *AccountLocks) Locked(accountID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.held[accountID]
	return ok
}
