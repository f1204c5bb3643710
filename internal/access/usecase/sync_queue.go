package usecase

import "sync"

type laneKey struct {
	sink string
	id   int64
}

// lane orders the sink calls of one credential. tail is closed when the last
// enqueued call has finished.
type lane struct {
	tail     chan struct{}
	revision uint64
	removed  bool
}

// syncQueue serializes sink calls per (sink, credential). An upsert older than
// one already queued, or queued after the removal, is dropped. Credential ids
// are never reused so a removed lane stays as a tombstone.
type syncQueue struct {
	mu    sync.Mutex
	lanes map[laneKey]*lane
}

func newSyncQueue() *syncQueue {
	return &syncQueue{lanes: map[laneKey]*lane{}}
}

// enqueue reserves the next slot of the lane. The caller waits on prev (when
// not nil) before calling the sink and closes done afterwards. ok is false
// when the call is stale and must be skipped.
func (q *syncQueue) enqueue(key laneKey, revision uint64, remove bool) (prev, done chan struct{}, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	l := q.lanes[key]
	if l == nil {
		l = &lane{}
		q.lanes[key] = l
	}

	if l.removed || (!remove && revision <= l.revision) {
		return nil, nil, false
	}

	if remove {
		l.removed = true
	}
	l.revision = max(l.revision, revision)

	prev = l.tail
	done = make(chan struct{})
	l.tail = done
	return prev, done, true
}

// release closes done and forgets it when nothing was queued behind it.
func (q *syncQueue) release(key laneKey, done chan struct{}) {
	q.mu.Lock()
	defer q.mu.Unlock()

	close(done)
	if l := q.lanes[key]; l != nil && l.tail == done {
		l.tail = nil
	}
}
