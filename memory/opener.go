package memory

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/hupe1980/tradingfloor/core"
)

// Opener returns the memory store owned by a trader. Different names must
// yield stores that share no state.
type Opener interface {
	Open(name string) (core.MemoryStore, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(name string) (core.MemoryStore, error)

// Open implements Opener.
func (f OpenerFunc) Open(name string) (core.MemoryStore, error) { return f(name) }

// SQLiteOpener opens dir/<name>.db for each trader.
func SQLiteOpener(dir string) Opener {
	return OpenerFunc(func(name string) (core.MemoryStore, error) {
		file, err := FileName(name)
		if err != nil {
			return nil, err
		}
		return OpenSQLStore(filepath.Join(dir, file))
	})
}

// InMemoryOpener hands out one process-local store per name. The same name
// gets the same store back, so memories survive across cycles.
type InMemoryOpener struct {
	mu     sync.Mutex
	stores map[string]*InMemoryStore
}

// NewInMemoryOpener creates an empty InMemoryOpener.
func NewInMemoryOpener() *InMemoryOpener {
	return &InMemoryOpener{stores: make(map[string]*InMemoryStore)}
}

// Open implements Opener.
func (o *InMemoryOpener) Open(name string) (core.MemoryStore, error) {
	key, err := FileName(name)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.stores[key]
	if !ok {
		s = NewInMemoryStore()
		o.stores[key] = s
	}
	return nopCloser{s}, nil
}

// nopCloser keeps a shared in-memory store alive across Close calls.
type nopCloser struct{ *InMemoryStore }

func (nopCloser) Close() error { return nil }

// FileName maps a trader name to a safe database file name.
func FileName(name string) (string, error) {
	key := core.TraderKey(name)
	if key == "" {
		return "", fmt.Errorf("memory store needs a trader name")
	}
	return key + ".db", nil
}
