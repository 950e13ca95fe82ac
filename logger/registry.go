package logger

import (
	"sync"
)

// registry holds the component loggers a binary configured at startup.
var registry = struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}{loggers: make(map[string]*Logger)}

// Register stores l under name, replacing any earlier registration.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// RegisterDefaults registers a component logger derived from the global
// logger for each name. Call it after SetGlobalLogger or Init.
func RegisterDefaults(names ...string) {
	global := GetGlobalLogger()
	for _, name := range names {
		Register(name, global.WithComponent(name))
	}
}

// Lookup returns the logger registered under name.
func Lookup(name string) (*Logger, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	l, ok := registry.loggers[name]
	return l, ok
}

// Get returns the logger registered under name, or the global logger tagged
// with the component name.
func Get(name string) *Logger {
	if l, ok := Lookup(name); ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}
