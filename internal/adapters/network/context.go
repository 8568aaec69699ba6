// Package network exposes the resolved network configuration to the cache.
package network

import (
	"github.com/trebuchet-org/treb-contracts/internal/domain/config"
	"github.com/trebuchet-org/treb-contracts/internal/usecase"
)

// Context is the network the cache is scoped to
type Context struct {
	id       string
	live     bool
	explorer string
}

var _ usecase.NetworkContext = (*Context)(nil)

// NewContext creates a network context from a resolved network
func NewContext(network *config.Network) *Context {
	ctx := &Context{
		id:   network.ID(),
		live: !network.Ephemeral,
	}
	if network.Explorer != nil {
		ctx.explorer = network.Explorer.Name
	}
	return ctx
}

// ProvideContext creates the network context for Wire dependency injection
func ProvideContext(cfg *config.RuntimeConfig) usecase.NetworkContext {
	return NewContext(cfg.Network)
}

func (c *Context) NetworkID() string    { return c.id }
func (c *Context) IsLive() bool         { return c.live }
func (c *Context) ExplorerName() string { return c.explorer }
