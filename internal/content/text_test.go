package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "three sentences keeps first two",
			in:   "First sentence. Second sentence! Third sentence.",
			want: "First sentence. Second sentence!",
		},
		{
			name: "single sentence kept whole",
			in:   "Just one sentence without a terminator",
			want: "Just one sentence without a terminator",
		},
		{
			name: "question marks are boundaries",
			in:   "Is this first? Is this second? Is this third?",
			want: "Is this first? Is this second?",
		},
		{
			name: "dot without trailing space is not a boundary",
			in:   "Version 1.2 shipped today. More below. The end.",
			want: "Version 1.2 shipped today. More below.",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excerpt(tt.in))
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, "#go #backend", NormalizeTags("  #go   #backend "))
	assert.Equal(t, "", NormalizeTags("   "))
	assert.Equal(t, "one two", NormalizeTags("one\n\ttwo"))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"#go", "#backend"}, SplitTags("#go #backend"))
	assert.Empty(t, SplitTags(""))
}

func TestSlugBase(t *testing.T) {
	assert.Equal(t, "hello-world", SlugBase("Hello World"))
	assert.Equal(t, "cafe-menu", SlugBase("Café Menu"))
}

func TestSanitizeTitleStripsMarkup(t *testing.T) {
	assert.Equal(t, "Hello", SanitizeTitle("<b>Hello</b>"))
	assert.Equal(t, "alert(1)", SanitizeTitle("<script>alert(1)</script>"))
}

func TestSanitizeBody(t *testing.T) {
	// Scripts are removed, benign formatting survives.
	got := SanitizeBody(`<p>Hi</p><script>alert(1)</script><p><strong>bold</strong></p>`)
	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "<strong>bold</strong>")

	// Paragraphs emptied by sanitization are dropped.
	got = SanitizeBody(`<p>keep</p><p><script>x()</script></p>`)
	assert.Equal(t, "<p>keep</p>", got)
}
