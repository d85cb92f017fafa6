package logger

import "sync"

// defaultBackend is the single Backend every subsystem logger in the
// process shares, mirroring the teacher's `var log, _ = logger.Get(...)`
// per-package idiom, which assumes one shared backend wired up once at
// startup.
var defaultBackend = NewBackend()

var (
	registryMu sync.Mutex
	registry   = make(map[string]*Logger)
)

// Get returns the shared Logger for subsystemTag, creating it on first use.
// Repeated calls with the same tag return the same *Logger, so SetLevel
// calls made against it are visible everywhere that tag is logged under.
func Get(subsystemTag string) (*Logger, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if l, ok := registry[subsystemTag]; ok {
		return l, nil
	}
	l := defaultBackend.Logger(subsystemTag)
	registry[subsystemTag] = l
	return l, nil
}

// DefaultBackend returns the process-wide shared Backend, so the entrypoint
// can call Run()/AddLogFile on it once at startup.
func DefaultBackend() *Backend {
	return defaultBackend
}
