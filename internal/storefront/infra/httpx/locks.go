package httpx

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 256

// sessionLocks serializes the read-modify-write cycles of one cart session.
// Sessions hash onto a fixed set of mutexes, so two sessions may share a
// stripe but memory does not grow with the number of visitors.
type sessionLocks struct {
	stripes [lockStripes]sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{}
}

func (l *sessionLocks) stripe(session string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(session))
	return &l.stripes[h.Sum32()%lockStripes]
}

func (l *sessionLocks) lock(session string) func() {
	m := l.stripe(session)
	m.Lock()
	return m.Unlock
}
