// Package sites provides the registry of sites a deployment serves
package sites

import (
	"fmt"
)

// DefaultHandle is the handle of the implicit site in single-site deployments
const DefaultHandle = "en"

// Site is one locale/URL a deployment serves
type Site struct {
	Handle string `mapstructure:"handle" yaml:"handle"`
	Name   string `mapstructure:"name" yaml:"name"`
	URL    string `mapstructure:"url" yaml:"url"`
	Locale string `mapstructure:"locale" yaml:"locale"`
}

// Registry holds the configured sites in configuration order. The first site
// is the default one.
type Registry struct {
	sites []Site
	multi bool
}

// Single returns a registry with only the implicit default site
func Single() *Registry {
	return &Registry{
		sites: []Site{{Handle: DefaultHandle, Name: "English", URL: "/", Locale: "en_US"}},
	}
}

// New creates a registry from configured sites. Zero sites falls back to
// Single; more than one site enables multi-site mode.
func New(sites []Site) (*Registry, error) {
	if len(sites) == 0 {
		return Single(), nil
	}

	seen := make(map[string]bool, len(sites))
	for _, site := range sites {
		if site.Handle == "" {
			return nil, fmt.Errorf("site must have a handle")
		}
		if seen[site.Handle] {
			return nil, fmt.Errorf("site %s is configured twice", site.Handle)
		}
		seen[site.Handle] = true
	}

	copied := make([]Site, len(sites))
	copy(copied, sites)
	return &Registry{sites: copied, multi: len(sites) > 1}, nil
}

// All returns the handles of all sites in configuration order
func (r *Registry) All() []string {
	handles := make([]string, len(r.sites))
	for i, site := range r.sites {
		handles[i] = site.Handle
	}
	return handles
}

// Default returns the handle of the default site
func (r *Registry) Default() string {
	return r.sites[0].Handle
}

// IsMultiSite reports whether more than one site is configured
func (r *Registry) IsMultiSite() bool {
	return r.multi
}

// Get returns the site with the given handle
func (r *Registry) Get(handle string) (Site, bool) {
	for _, site := range r.sites {
		if site.Handle == handle {
			return site, true
		}
	}
	return Site{}, false
}
