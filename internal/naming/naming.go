// Package naming derives store-facing names for synchronised documents:
// collection type names from document type tags, and node UIDs that are
// unique across every configured dataset.
package naming

import (
	"crypto/sha1" //nolint:gosec // identity hash, not security
	"encoding/base64"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

// uidPrefixLength is the number of hash characters kept in a UID prefix.
const uidPrefixLength = 10

// Namer derives type names and UIDs for one source.
type Namer struct {
	typePrefix string
	uidPrefix  string
}

// New creates a Namer for the given source configuration.
func New(cfg domain.SourceConfig) *Namer {
	cfg = cfg.WithDefaults()
	return &Namer{
		typePrefix: cfg.TypePrefix,
		uidPrefix:  hashIdentity(cfg.ProjectID, cfg.Dataset, cfg.Token),
	}
}

// TypeName returns the collection name for a document type tag.
// "blogPost" becomes "SanityBlogPost"; a tag that already carries the
// prefix, such as "sanity.imageAsset", is not prefixed twice.
func (n *Namer) TypeName(typeTag string) string {
	name := n.typePrefix + pascalCase(typeTag)
	doubled := n.typePrefix + n.typePrefix
	if n.typePrefix != "" && strings.HasPrefix(name, doubled) {
		name = strings.TrimPrefix(name, n.typePrefix)
	}
	return name
}

// UID returns the store-wide identifier for a logical document id.
func (n *Namer) UID(id string) string {
	return n.uidPrefix + "-" + id
}

// pascalCase splits s into words and upper-cases the first letter of
// each, keeping the rest of every word as written.
func pascalCase(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}
	// Casers are stateful, so each call gets its own.
	titled := cases.Title(language.Und, cases.NoLower).String(strings.Join(words, " "))
	return strings.ReplaceAll(titled, " ", "")
}

// splitWords breaks s at separators and at lower-to-upper case changes.
func splitWords(s string) []string {
	var words []string
	var cur []rune
	var prev rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()

	return words
}

func hashIdentity(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "-"))) //nolint:gosec // identity hash
	encoded := base64.StdEncoding.EncodeToString(sum[:])

	var b strings.Builder
	for _, r := range encoded {
		if r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
		if b.Len() == uidPrefixLength {
			break
		}
	}
	return b.String()
}
