/*
Package dsl provides a fluent builder for constructing diagram graphs in code.

It is the programmatic counterpart of drawing a diagram: useful for tests,
fixtures and generators that need a graph without a layout document.

Example usage:

	b := dsl.New()

	b.Add("Init").Start().Complete("Fetch")
	b.Add("Fetch").Turbo().Complete("Ready?").Error("Init")
	b.Add("Ready?").Decision("payload.ok").True("Done").False("Fetch")
	b.Add("Done")

	g, err := b.Build()
	if err != nil {
		// handle error
	}
	doc := projector.Project(g)
*/
package dsl
