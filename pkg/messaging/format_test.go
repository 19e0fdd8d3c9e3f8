package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
)

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name     string
		template string
		bm       bookmark.Bookmark
		want     string
	}{
		{
			name:     "default template",
			template: "",
			bm:       bookmark.Bookmark{URL: "https://e.com", Title: "Hi"},
			want:     "🔖 Hi\nhttps://e.com",
		},
		{
			name:     "explicit default template",
			template: DefaultTemplate,
			bm:       bookmark.Bookmark{URL: "https://e.com", Title: "Hi"},
			want:     "🔖 Hi\nhttps://e.com",
		},
		{
			name:     "custom template",
			template: "new bookmark: {title} ({url})",
			bm:       bookmark.Bookmark{URL: "https://go.dev", Title: "Go"},
			want:     "new bookmark: Go (https://go.dev)",
		},
		{
			name:     "placeholder repeated",
			template: "{title} / {title}",
			bm:       bookmark.Bookmark{URL: "u", Title: "t"},
			want:     "t / t",
		},
		{
			name:     "values substituted verbatim, not re-expanded",
			template: "{title}|{url}",
			bm:       bookmark.Bookmark{URL: "https://e.com", Title: "{url}"},
			want:     "{url}|https://e.com",
		},
		{
			name:     "template without placeholders",
			template: "saved",
			bm:       bookmark.Bookmark{URL: "https://e.com", Title: "Hi"},
			want:     "saved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMessage(tt.template, tt.bm))
		})
	}
}
