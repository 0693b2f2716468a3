// Package registry maps logical service names to base URLs. The mapping
// is static for the lifetime of the process and comes from configuration.
package registry

type Registry struct {
	services map[string]string
}

func New(services map[string]string) *Registry {
	m := make(map[string]string, len(services))
	for name, url := range services {
		m[name] = url
	}
	return &Registry{services: m}
}

// Resolve returns the base URL for a logical service name.
func (r *Registry) Resolve(name string) (string, bool) {
	url, ok := r.services[name]
	return url, ok
}
