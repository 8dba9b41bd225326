/*
Package domain contains the core models shared by every statemap component.

It defines the two shapes the editor converts between: the visual Graph (nodes
with categories and attribute bags, connected by port-tagged links) and the
StateConfig Document (states, decisions and super-states with named outgoing
links). The package is pure and free of I/O so the projector, hydrator and
validator can be exercised without any rendering surface.

# Key Entities

  - Node / Link / Graph: the diagram model owned by the editor host.
  - State / Decision / SuperState / Document: the derived state configuration.
  - Diagram: the persisted pair of an opaque layout document and its config.
  - DocumentDiff: entity-level changes between two projections.
*/
package domain
