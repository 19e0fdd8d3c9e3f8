package messaging

import (
	"strings"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
)

// DefaultTemplate renders the bookmark emoji, the title, then the URL on its
// own line.
const DefaultTemplate = "🔖 {title}\n{url}"

// FormatMessage renders a bookmark through a message template, substituting
// the {title} and {url} placeholders verbatim in a single pass. An empty
// template selects DefaultTemplate.
func FormatMessage(template string, bm bookmark.Bookmark) string {
	if template == "" {
		template = DefaultTemplate
	}
	r := strings.NewReplacer("{title}", bm.Title, "{url}", bm.URL)
	return r.Replace(template)
}
