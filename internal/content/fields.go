package content

import (
	"incognitor/internal/models"
)

const maxTitleLength = 255

// Input carries the writable fields of a create/update request, before
// validation. Kind-irrelevant fields are ignored by Validate.
type Input struct {
	Title    string
	Content  string
	Tags     string
	From     string
	To       string
	Location string
}

// Normalized is the validated, sanitized and derived form of an Input,
// ready to be written to a model.
type Normalized struct {
	Title    string
	Content  string
	Excerpt  string
	Tags     string
	SlugBase string
	From     string
	To       string
	Location string
}

// Validate checks per-kind required fields and derives the normalized
// values: sanitized title and body, excerpt, collapsed tags and slug base.
// Returns a field-keyed validation error on failure.
func Validate(kind Kind, in Input) (Normalized, error) {
	def := Lookup(kind)
	fields := map[string]string{}

	if in.Title == "" {
		fields["title"] = "The title field is required."
	} else if len(in.Title) > maxTitleLength {
		fields["title"] = "The title may not be greater than 255 characters."
	}

	if def.HasBody && in.Content == "" {
		fields["content"] = "The content field is required."
	}

	if kind == KindEvent {
		if in.From == "" {
			fields["from"] = "The from field is required."
		}
		if in.To == "" {
			fields["to"] = "The to field is required."
		}
		if in.Location == "" {
			fields["location"] = "The location field is required."
		}
	}

	if len(fields) > 0 {
		return Normalized{}, models.NewFieldValidationError("Validation failed", fields)
	}

	out := Normalized{
		Title:    SanitizeTitle(in.Title),
		Tags:     NormalizeTags(in.Tags),
		From:     in.From,
		To:       in.To,
		Location: in.Location,
	}
	out.SlugBase = SlugBase(out.Title)
	if def.HasBody {
		out.Content = SanitizeBody(in.Content)
		out.Excerpt = Excerpt(out.Content)
	}
	return out, nil
}

// Apply writes normalized values onto a concrete model. Slug is set
// separately once per-kind uniqueness has been resolved.
func Apply(item models.Content, n Normalized) {
	switch it := item.(type) {
	case *models.Post:
		it.Title = n.Title
		it.Tags = n.Tags
		it.Content = n.Content
		it.Excerpt = n.Excerpt
	case *models.Blog:
		it.Title = n.Title
		it.Tags = n.Tags
		it.Content = n.Content
		it.Excerpt = n.Excerpt
	case *models.Event:
		it.Title = n.Title
		it.Tags = n.Tags
		it.From = n.From
		it.To = n.To
		it.Location = n.Location
	}
}
