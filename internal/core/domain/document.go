package domain

// Reserved document field names used by the content platform.
const (
	// FieldID holds the globally unique document identifier.
	FieldID = "_id"

	// FieldType holds the logical type tag of a document.
	FieldType = "_type"

	// FieldRef marks an embedded object as a reference to another document.
	FieldRef = "_ref"
)

// Document is a content document as delivered by the export stream or as
// the result of a listener mutation. Field values are whatever the JSON
// decoder produced: maps, slices, strings, float64, bool or nil.
type Document map[string]any

// ID returns the document's raw identifier, which may carry a draft prefix.
// Returns empty string when the field is missing or not a string.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Type returns the document's type tag.
func (d Document) Type() string {
	t, _ := d[FieldType].(string)
	return t
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Node is a materialized document held by the host store.
// Exactly one node exists per logical document.
type Node struct {
	// ID is the logical identifier the node is keyed by.
	ID string

	// UID is the store-wide unique identifier derived from the source
	// identity and ID.
	UID string

	// TypeName is the name of the collection the node belongs to.
	TypeName string

	// Document is the visible document body. Its FieldID keeps the raw
	// identifier, so a materialized draft still reports a draft id.
	Document Document
}

// DocumentID returns the raw identifier of the materialized body.
func (n *Node) DocumentID() string {
	if n == nil {
		return ""
	}
	return n.Document.ID()
}
