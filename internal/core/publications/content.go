package publications

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/moderation"
)

// MaxContentChars is the publication text limit, counted in grapheme clusters
const MaxContentChars = 5000

// Content is the immutable text body of a publication. Empty text is valid.
type Content struct {
	text string
}

// NewContent validates text against the length limit and the moderation policy.
// A nil policy means moderation.DefaultContentPolicy.
func NewContent(text string, policy moderation.Policy) (Content, error) {
	if n := uniseg.GraphemeClusterCount(text); n > MaxContentChars {
		return Content{}, errs.Detail(ErrContentTooLong, "got %d", n)
	}
	if policy == nil {
		policy = moderation.DefaultContentPolicy()
	}
	if !policy.IsAppropriate(text) {
		return Content{}, ErrInappropriateContent
	}
	return Content{text: text}, nil
}

// restoreContent rebuilds stored text without re-running moderation,
// which may have changed since the text was accepted.
func restoreContent(text string) Content {
	return Content{text: text}
}

func (c Content) Text() string {
	return c.text
}

func (c Content) String() string {
	return c.text
}

// IsEmpty reports whether the text is blank
func (c Content) IsEmpty() bool {
	return strings.TrimSpace(c.text) == ""
}

func (c Content) WordsCount() int {
	return len(strings.Fields(c.text))
}

func (c Content) CharactersCount() int {
	return uniseg.GraphemeClusterCount(c.text)
}

func (c Content) Equals(other Content) bool {
	return c.text == other.text
}
