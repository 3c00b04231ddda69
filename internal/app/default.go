package app

import "sync"

// The process-wide default App used by bindings that do not construct their
// own. It is built lazily on first use and replaced explicitly, never via
// ambient lookup from arbitrary packages.
var (
	defaultMu  sync.Mutex
	defaultApp *App
)

// Default returns the shared App, constructing one with default Config on
// first use.
func Default() (*App, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultApp == nil {
		a, err := New(Config{})
		if err != nil {
			return nil, err
		}
		defaultApp = a
	}
	return defaultApp, nil
}

// SetDefault replaces the shared App. The previous instance, if any, is
// closed.
func SetDefault(a *App) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultApp != nil && defaultApp != a {
		_ = defaultApp.Close()
	}
	defaultApp = a
}

// ResetDefault drops the shared App so the next Default call rebuilds it.
// Exists for test isolation.
func ResetDefault() {
	SetDefault(nil)
}
