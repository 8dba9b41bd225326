/*
Package statemap converts between a diagram graph and a state configuration document.

A user draws a workflow as a graph: a Start node, State nodes, decision nodes
(category Conditional), super-states and free-text comments, joined by links
leaving named ports (error, skip, complete on states; true, false on
decisions). The state configuration is the JSON document a workflow runtime
reads:

	{
	  "states":      [{"id": "Init", "links": {"complete": "A"}, "entryPoint": true}, ...],
	  "decisions":   [{"id": "D1", "concrete": "x>5", "links": {"true": "A", "false": "B"}}],
	  "superStates": [{"id": "G", "links": {}, "entrySubState": "A"}]
	}

# Core

Three pure functions do the work and are bundled by Core:

  - projector.Project walks a graph and produces a document.
  - hydrator.Hydrate rebuilds a graph from a document, rejecting invalid ones.
  - schema.Validate reports every structural problem of a document.

# Editor

Editor is the host-side owner of a graph. Edits are batched and projected on
Commit, which also persists the layout and the document when a store is
configured. Load replaces the graph from a hand-edited document; a rejected
document leaves the graph untouched.

	ed := statemap.NewEditor(statemap.WithStore(store), statemap.WithDiagramID("checkout"))

	_ = ed.Edit(func(g *domain.Graph) error {
		return g.Replace(nodes, links)
	})

	doc, err := ed.Commit(ctx)
*/
package statemap
