package core

import "sort"

// admissionQueue holds join requests waiting for the manager's decision.
// One pending request per display name; a second request for a queued
// name is rejected by the room. Synchronization is provided by the room.
type admissionQueue struct {
	byName map[string]Handle
}

func newAdmissionQueue() *admissionQueue {
	return &admissionQueue{byName: make(map[string]Handle)}
}

func (q *admissionQueue) put(name string, h Handle) bool {
	if _, ok := q.byName[name]; ok {
		return false
	}
	q.byName[name] = h
	return true
}

func (q *admissionQueue) contains(name string) bool {
	_, ok := q.byName[name]
	return ok
}

// take removes and returns the pending handle for name.
func (q *admissionQueue) take(name string) (Handle, bool) {
	h, ok := q.byName[name]
	if ok {
		delete(q.byName, name)
	}
	return h, ok
}

// drain empties the queue and returns the removed entries.
func (q *admissionQueue) drain() map[string]Handle {
	out := q.byName
	q.byName = make(map[string]Handle)
	return out
}

func (q *admissionQueue) size() int { return len(q.byName) }

func (q *admissionQueue) names() []string {
	out := make([]string, 0, len(q.byName))
	for name := range q.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
