package handlers

import (
	"strconv"
	"sync"
)

// Inflight is the processing flag of the mutation forms: one submission per
// record at a time. A second one for the same key is refused while the
// first is still talking to the backend.
type Inflight struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func NewInflight() *Inflight {
	return &Inflight{busy: make(map[string]struct{})}
}

// Acquire marks key busy. It reports false when key already was.
func (f *Inflight) Acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.busy[key]; ok {
		return false
	}
	f.busy[key] = struct{}{}
	return true
}

func (f *Inflight) Release(key string) {
	f.mu.Lock()
	delete(f.busy, key)
	f.mu.Unlock()
}

// Len returns the number of submissions in progress.
func (f *Inflight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.busy)
}

// RecordKey identifies a mutation on an existing record.
func RecordKey(resource string, id int) string {
	return resource + ":" + strconv.Itoa(id)
}

// CreateKey identifies a pending create by one operator.
func CreateKey(resource string, operator uint) string {
	return resource + ":new:" + strconv.FormatUint(uint64(operator), 10)
}
