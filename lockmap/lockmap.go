// Package lockmap hands out one RWMutex per key, created on first use and
// dropped once nobody holds or waits for it.
package lockmap

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

type holderLock struct {
	holders int
	mu      sync.RWMutex
}

type Lockmap struct {
	l sync.Mutex
	m map[solana.PublicKey]*holderLock
}

func New(initSize int) *Lockmap {
	return &Lockmap{
		m: make(map[solana.PublicKey]*holderLock, initSize),
	}
}

func (l *Lockmap) Lock(key solana.PublicKey) {
	l.lock(key, true)
}

func (l *Lockmap) Unlock(key solana.PublicKey) {
	l.unlock(key, true)
}

func (l *Lockmap) RLock(key solana.PublicKey) {
	l.lock(key, false)
}

func (l *Lockmap) RUnlock(key solana.PublicKey) {
	l.unlock(key, false)
}

func (l *Lockmap) lock(key solana.PublicKey, write bool) {
	l.l.Lock()
	hl, ok := l.m[key]
	if !ok {
		hl = &holderLock{}
		l.m[key] = hl
	}
	hl.holders++
	l.l.Unlock()

	if write {
		hl.mu.Lock()
	} else {
		hl.mu.RLock()
	}
}

func (l *Lockmap) unlock(key solana.PublicKey, write bool) {
	l.l.Lock()
	hl, ok := l.m[key]
	if !ok {
		l.l.Unlock()
		panic("lockmap: unlock of unlocked key " + key.String())
	}
	hl.holders--
	if hl.holders == 0 {
		delete(l.m, key)
	}
	l.l.Unlock()

	if write {
		hl.mu.Unlock()
	} else {
		hl.mu.RUnlock()
	}
}

// Locks is the number of keys currently held or waited on.
func (l *Lockmap) Locks() int {
	l.l.Lock()
	defer l.l.Unlock()

	return len(l.m)
}
