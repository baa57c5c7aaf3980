package provider

import "context"

// Repository resolves providers. GetByAlias returns (nil, nil) when no
// provider carries the alias.
type Repository interface {
	GetByAlias(ctx context.Context, alias string) (*Provider, error)
}
