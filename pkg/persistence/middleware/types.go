package middleware

import "github.com/aretw0/statemap/pkg/ports"

// Middleware allows wrapping a DiagramStore to add behavior.
type Middleware func(ports.DiagramStore) ports.DiagramStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.DiagramStore, mws ...Middleware) ports.DiagramStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
