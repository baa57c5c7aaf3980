// Package provider models the external payment providers merchants route
// payments through. Providers are resolved by alias at creation time.
package provider

type Provider struct {
	id    uint64
	name  string
	alias string
	url   string
}

func (p *Provider) ID() uint64 {
	return p.id
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Alias() string {
	return p.alias
}

func (p *Provider) URL() string {
	return p.url
}

func ReconstructProvider(id uint64, name, alias, url string) *Provider {
	return &Provider{id: id, name: name, alias: alias, url: url}
}
