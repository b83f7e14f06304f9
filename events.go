package ggfx

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/gogpu/ggfx/effect"
	"github.com/gogpu/ggfx/reconcile"
)

// Event names accepted by Dispatch.
const (
	EventAddFilter       = "ggfx.addFilter"
	EventRemoveFilter    = "ggfx.removeFilter"
	EventSwitchFilter    = "ggfx.switchFilter"
	EventSetFilters      = "ggfx.setFilters"
	EventAddParticles    = "ggfx.addParticles"
	EventRemoveParticles = "ggfx.removeParticles"
	EventSwitchParticles = "ggfx.switchParticles"
	EventSetParticles    = "ggfx.setParticles"
)

var (
	// ErrUnknownEvent is returned by Dispatch for names it does not route.
	ErrUnknownEvent = errors.New("ggfx: unknown event")

	// ErrPayload is returned by Dispatch when the payload has the wrong type.
	ErrPayload = errors.New("ggfx: invalid event payload")
)

// Request is the payload of the add and switch events.
type Request struct {
	ID      string
	Type    effect.Type
	Options effect.Options
}

// Removal is the payload of the remove events.
type Removal struct {
	ID string
}

// List is the payload of the set events.
type List []effect.Descriptor

type route struct {
	payload reflect.Type
	run     func(s *Session, payload any) *reconcile.Pass
}

var routes = map[string]route{}

func registerRoute[P any](name string, run func(s *Session, p P) *reconcile.Pass) {
	routes[name] = route{
		payload: reflect.TypeFor[P](),
		run: func(s *Session, payload any) *reconcile.Pass {
			return run(s, payload.(P))
		},
	}
}

func init() {
	registerRoute(EventAddFilter, func(s *Session, r Request) *reconcile.Pass { return s.AddFilter(r.ID, r.Type, r.Options) })
	registerRoute(EventRemoveFilter, func(s *Session, r Removal) *reconcile.Pass { return s.RemoveFilter(r.ID) })
	registerRoute(EventSwitchFilter, func(s *Session, r Request) *reconcile.Pass { return s.SwitchFilter(r.ID, r.Type, r.Options) })
	registerRoute(EventSetFilters, func(s *Session, l List) *reconcile.Pass { return s.SetFilterList(l) })
	registerRoute(EventAddParticles, func(s *Session, r Request) *reconcile.Pass { return s.AddParticles(r.ID, r.Type, r.Options) })
	registerRoute(EventRemoveParticles, func(s *Session, r Removal) *reconcile.Pass { return s.RemoveParticles(r.ID) })
	registerRoute(EventSwitchParticles, func(s *Session, r Request) *reconcile.Pass { return s.SwitchParticles(r.ID, r.Type, r.Options) })
	registerRoute(EventSetParticles, func(s *Session, l List) *reconcile.Pass { return s.SetParticleList(l) })
}

// EventNames returns every event name Dispatch routes, sorted.
func EventNames() []string {
	names := make([]string, 0, len(routes))
	for name := range routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handler observes a dispatched event after the session handled it.
type Handler func(name string, payload any, pass *reconcile.Pass)

type events struct {
	mu       sync.RWMutex
	next     int
	handlers map[string]map[int]Handler
}

func newEvents() *events {
	return &events{handlers: make(map[string]map[int]Handler)}
}

// On registers h for the event name and returns a function removing it.
// The name "*" observes every event.
func (s *Session) On(name string, h Handler) (off func()) {
	e := s.events
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.next
	e.next++
	if e.handlers[name] == nil {
		e.handlers[name] = make(map[int]Handler)
	}
	e.handlers[name][id] = h
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.handlers[name], id)
	}
}

func (e *events) observers(name string) []Handler {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var ids []int
	all := make(map[int]Handler)
	for _, key := range []string{name, "*"} {
		for id, h := range e.handlers[key] {
			ids = append(ids, id)
			all[id] = h
		}
	}
	sort.Ints(ids)
	out := make([]Handler, 0, len(ids))
	for _, id := range ids {
		out = append(out, all[id])
	}
	return out
}

// Dispatch routes a named control event to the session. The payload may
// also be a pointer to, or a value convertible to, the payload type, such
// as a []effect.Descriptor for a List.
func (s *Session) Dispatch(name string, payload any) (*reconcile.Pass, error) {
	if s.closed {
		return nil, ErrClosed
	}
	r, ok := routes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	v := reflect.ValueOf(payload)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if v.IsValid() && v.Kind() == r.payload.Kind() && v.Type().ConvertibleTo(r.payload) {
		payload = v.Convert(r.payload).Interface()
	}
	if payload == nil || reflect.TypeOf(payload) != r.payload {
		return nil, fmt.Errorf("%w: %s wants %v, got %T", ErrPayload, name, r.payload, payload)
	}
	pass := r.run(s, payload)
	for _, h := range s.events.observers(name) {
		h(name, payload, pass)
	}
	return pass, nil
}
