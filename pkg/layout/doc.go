// Package layout reads and writes the diagram widget's persisted model.
//
// The widget saves its model as a GraphLinksModel JSON document: a
// nodeDataArray of free-form node objects identified by "key" and
// "category", and a linkDataArray of {from, to, fromPort} objects. Node keys
// may be numbers (the widget assigns negative integers by default); they are
// read as strings. Every node property other than key and category is kept in
// the node's attribute bag, so locations and colors survive a round trip.
package layout
