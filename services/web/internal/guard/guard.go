// Package guard refuses overlapping submissions for the same action target.
package guard

import (
	"strconv"
	"sync"
)

// InFlight is a set of keys whose action has not finished yet.
type InFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func New() *InFlight {
	return &InFlight{keys: make(map[string]struct{})}
}

// TryAcquire marks key busy. It returns false when key is already busy;
// otherwise the returned release must be called once the action completes.
func (g *InFlight) TryAcquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.keys[key]; busy {
		return nil, false
	}
	g.keys[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.keys, key)
			g.mu.Unlock()
		})
	}, true
}

// Busy reports whether key is currently held.
func (g *InFlight) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.keys[key]
	return ok
}

func CreateKey(jikanID int) string { return "create:" + strconv.Itoa(jikanID) }
func UpdateKey(id string) string { return "update:" + id }
func DeleteKey(id string) string { return "delete:" + id }
