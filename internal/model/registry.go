package model

import (
	"sort"
	"sync"

	"github.com/Pushya04/Mental-Health-Chatbot/internal/interfaces"
)

// Handle pairs the tokenizer and generator for one model identifier. Handles
// are owned by the Registry; callers use one only for the duration of a single
// generation call.
type Handle struct {
	Tokenizer interfaces.Tokenizer
	Generator interfaces.Generator
}

// Registry lazily loads and memoizes tokenizer/model pairs per identifier.
// Entries live for the process lifetime and are never evicted; the cache is
// unbounded by design.
type Registry struct {
	store   interfaces.ModelStore
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	once   sync.Once
	handle *Handle
	err    error
	done   bool // guarded by Registry.mu once the load has finished
}

// NewRegistry creates a registry backed by the given model store
func NewRegistry(store interfaces.ModelStore) *Registry {
	return &Registry{
		store:   store,
		entries: make(map[string]*entry),
	}
}

// Get returns the cached handle for modelID, loading it on first use. At most
// one load runs per identifier: concurrent first-time callers share the same
// in-flight load and all receive its result. A failed load is not cached, so
// the next call retries.
func (r *Registry) Get(modelID string) (*Handle, error) {
	r.mu.Lock()
	e, ok := r.entries[modelID]
	if !ok {
		e = &entry{}
		r.entries[modelID] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		e.load(modelID, r.store)
	})

	r.mu.Lock()
	if e.err != nil {
		if r.entries[modelID] == e {
			delete(r.entries, modelID)
		}
		r.mu.Unlock()
		return nil, e.err
	}
	e.done = true
	r.mu.Unlock()

	return e.handle, nil
}

func (e *entry) load(modelID string, store interfaces.ModelStore) {
	tok, gen, err := store.Load(modelID)
	if err != nil {
		e.err = &ModelLoadError{ModelID: modelID, Err: err}
		return
	}

	// Post-load normalization: a model may ship only one of pad/eos; mirror
	// whichever is present so downstream code can rely on both.
	if tok.PadID() < 0 && tok.EOSID() >= 0 {
		tok.SetPadID(tok.EOSID())
	}
	if tok.EOSID() < 0 && tok.PadID() >= 0 {
		tok.SetEOSID(tok.PadID())
	}

	e.handle = &Handle{Tokenizer: tok, Generator: gen}
}

// Loaded returns the identifiers currently cached, sorted for stable output
func (r *Registry) Loaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.entries))
	for id, e := range r.entries {
		if e.done {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
