/*
Package ports defines the driven ports (interfaces) of statemap.

These interfaces decouple the conversion core from the diagram widget and from
storage, so the projector, hydrator and validator can run against any graph
source and diagrams can be persisted in any backend.

# Key Interfaces

  - GraphView: the query side of the diagram widget (enumerate nodes and their outgoing links).
  - ModelSink: the command side of the diagram widget (replace the whole model atomically).
  - DiagramStore: persists layout documents together with their projected config.
  - ConfigLoader: reads authored state configuration documents from a repository.
  - DistributedLocker: serializes access to a diagram across replicas.
*/
package ports
