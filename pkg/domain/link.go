package domain

// Link connects a source node's named port to a destination node.
type Link struct {
	From     string `json:"from" yaml:"from"`
	FromPort string `json:"fromPort" yaml:"fromPort"`
	To       string `json:"to" yaml:"to"`
}

// NewLink creates a link leaving from's port towards to.
func NewLink(from, port, to string) Link {
	return Link{From: from, FromPort: port, To: to}
}
