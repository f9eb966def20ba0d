package connector

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Factory creates a new, unconnected Connector.
type Factory func() Connector

// Registry holds connector factories by driver name and live connections by
// service name. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	active    map[string]Connector
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		active:    make(map[string]Connector),
	}
}

// RegisterDriver registers the factory for a driver name.
func (r *Registry) RegisterDriver(driver string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[driver] = factory
}

// New returns an unconnected connector for driver.
func (r *Registry) New(driver string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver: %s (available: %v)", driver, r.drivers())
	}
	return factory(), nil
}

// Connect connects a new connector for cfg.Driver and registers it under
// serviceName, closing any connection it replaces.
func (r *Registry) Connect(serviceName string, cfg ConnectionConfig) error {
	conn, err := r.New(cfg.Driver)
	if err != nil {
		return err
	}
	if err := conn.Connect(cfg); err != nil {
		return fmt.Errorf("failed to connect service %q: %w", serviceName, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.active[serviceName]; ok {
		existing.Disconnect()
	}
	r.active[serviceName] = conn
	return nil
}

// Get returns the live connector for a service.
func (r *Registry) Get(serviceName string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.active[serviceName]
	if !ok {
		return nil, fmt.Errorf("service %q not connected (connected: %v)", serviceName, r.services())
	}
	return conn, nil
}

// Disconnect closes and forgets a service's connection.
func (r *Registry) Disconnect(serviceName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.active[serviceName]
	if !ok {
		return fmt.Errorf("service %q not connected", serviceName)
	}
	delete(r.active, serviceName)
	return conn.Disconnect()
}

// CloseAll disconnects every service.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, conn := range r.active {
		conn.Disconnect()
		delete(r.active, name)
	}
}

// ListServices returns the connected service names, sorted.
func (r *Registry) ListServices() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.services()
}

// Drivers returns the registered driver names, sorted.
func (r *Registry) Drivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.drivers()
}

func (r *Registry) drivers() []string {
	names := lo.Keys(r.factories)
	slices.Sort(names)
	return names
}

func (r *Registry) services() []string {
	names := lo.Keys(r.active)
	slices.Sort(names)
	return names
}
