// Package content defines the three content kinds and the dispatch table
// that maps a kind tag to its validation, model and resource mapping.
package content

import (
	"incognitor/internal/models"
)

// Kind discriminates the three content variants. Unknown tags are rejected
// at the API boundary with a 400.
type Kind string

const (
	KindPost  Kind = "post"
	KindBlog  Kind = "blog"
	KindEvent Kind = "event"
)

// Definition describes one content kind for kind-generic code paths.
type Definition struct {
	Kind  Kind
	Label string
	// HasBody is true for kinds with body content (and a derived excerpt).
	HasBody bool
	// HasUploads is true for kinds accepting thumbnail uploads.
	HasUploads bool
	// HasComments is true for kinds that carry comments.
	HasComments bool
	// New returns an empty model instance for queries.
	New func() models.Content
}

var registry = map[Kind]Definition{
	KindPost: {
		Kind:        KindPost,
		Label:       "Post",
		HasBody:     true,
		HasUploads:  true,
		HasComments: true,
		New:         func() models.Content { return &models.Post{} },
	},
	KindBlog: {
		Kind:    KindBlog,
		Label:   "Blog",
		HasBody: true,
		New:     func() models.Content { return &models.Blog{} },
	},
	KindEvent: {
		Kind:  KindEvent,
		Label: "Event",
		New:   func() models.Content { return &models.Event{} },
	},
}

// ParseKind validates a type discriminator from the request.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := registry[k]; !ok {
		return "", models.NewBadRequestError("Invalid content type")
	}
	return k, nil
}

// Lookup returns the definition for a parsed kind.
func Lookup(k Kind) Definition {
	return registry[k]
}

// Kinds returns all content kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindPost, KindBlog, KindEvent}
}
