// Package drafts classifies documents as drafts or published versions.
//
// A draft shares its logical id with the published document it will
// replace, prefixed with "drafts.". The prefix is byte-exact and every
// other component relies on it.
package drafts

import (
	"context"
	"strings"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/pipeline"
)

// Prefix marks a document id as a draft.
const Prefix = "drafts."

// IsDraftID reports whether id carries the draft prefix.
func IsDraftID(id string) bool {
	return strings.HasPrefix(id, Prefix)
}

// IsDraft reports whether doc is a draft.
func IsDraft(doc domain.Document) bool {
	return doc != nil && IsDraftID(doc.ID())
}

// PrefixID returns the draft id for id. Already prefixed ids are returned as is.
func PrefixID(id string) string {
	if IsDraftID(id) {
		return id
	}
	return Prefix + id
}

// UnprefixID returns the logical id for id.
func UnprefixID(id string) string {
	return strings.TrimPrefix(id, Prefix)
}

// Sink receives the partition made by ExtractDrafts.
type Sink interface {
	// AddDraft appends a draft to the pending overlay.
	AddDraft(doc domain.Document)

	// SetPublished records the latest published body for a logical id.
	SetPublished(id string, doc domain.Document)
}

// RemoveDrafts returns a stage that drops every draft.
func RemoveDrafts() pipeline.Stage {
	return pipeline.Filter(func(doc domain.Document) bool {
		return !IsDraft(doc)
	})
}

// ExtractDrafts returns a stage that diverts drafts into sink and records
// published documents in sink before forwarding them. Drafts never leave
// this stage.
func ExtractDrafts(sink Sink) pipeline.Stage {
	return func(_ context.Context, doc domain.Document) (pipeline.Verdict, error) {
		if IsDraft(doc) {
			sink.AddDraft(doc)
			return pipeline.Drop, nil
		}

		sink.SetPublished(UnprefixID(doc.ID()), doc)
		return pipeline.Pass, nil
	}
}
