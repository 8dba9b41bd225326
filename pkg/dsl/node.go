package dsl

import "github.com/aretw0/statemap/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	links   []domain.Link
	builder *Builder
}

// Start marks the node as the entry point of the workflow.
func (n *NodeBuilder) Start() *NodeBuilder {
	n.node.Category = domain.CategoryStart
	return n
}

// State marks the node as a regular state. This is the default.
func (n *NodeBuilder) State() *NodeBuilder {
	n.node.Category = domain.CategoryState
	return n
}

// Decision turns the node into a two-way branch labeled with concrete.
func (n *NodeBuilder) Decision(concrete string) *NodeBuilder {
	n.node.Category = domain.CategoryConditional
	n.node.Attrs[domain.AttrConcrete] = concrete
	return n
}

// SuperState turns the node into a group entered through entry.
func (n *NodeBuilder) SuperState(entry string) *NodeBuilder {
	n.node.Category = domain.CategorySuperState
	if entry != "" {
		n.node.Attrs[domain.AttrEntrySubState] = entry
	}
	return n
}

// Comment turns the node into a free-text annotation.
func (n *NodeBuilder) Comment(text string) *NodeBuilder {
	n.node.Category = domain.CategoryComment
	n.node.Attrs[domain.AttrText] = text
	return n
}

// Turbo sets the turbo flag, projected as turboSkip.
func (n *NodeBuilder) Turbo() *NodeBuilder {
	return n.Attr(domain.AttrTurbo, true)
}

// Cascade sets the cascade flag, projected as cascadeSkip.
func (n *NodeBuilder) Cascade() *NodeBuilder {
	return n.Attr(domain.AttrCascade, true)
}

// At records the diagram location of the node.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	return n.Attr(domain.AttrLocation, formatLoc(x, y))
}

// Attr sets an arbitrary attribute.
func (n *NodeBuilder) Attr(name string, value any) *NodeBuilder {
	n.node.Attrs[name] = value
	return n
}

// On draws a link from port to the node with key to.
func (n *NodeBuilder) On(port, to string) *NodeBuilder {
	n.links = append(n.links, domain.NewLink(n.node.Key, port, to))
	return n
}

// Complete links the complete port.
func (n *NodeBuilder) Complete(to string) *NodeBuilder { return n.On(domain.PortComplete, to) }

// Error links the error port.
func (n *NodeBuilder) Error(to string) *NodeBuilder { return n.On(domain.PortError, to) }

// Skip links the skip port.
func (n *NodeBuilder) Skip(to string) *NodeBuilder { return n.On(domain.PortSkip, to) }

// True links the true branch of a decision.
func (n *NodeBuilder) True(to string) *NodeBuilder { return n.On(domain.PortTrue, to) }

// False links the false branch of a decision.
func (n *NodeBuilder) False(to string) *NodeBuilder { return n.On(domain.PortFalse, to) }

// Add is a shortcut to b.Add, allowing chains to continue with the next node.
func (n *NodeBuilder) Add(key string) *NodeBuilder {
	return n.builder.Add(key)
}
