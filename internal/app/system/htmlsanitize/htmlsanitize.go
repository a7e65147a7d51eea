// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Team bios may carry light formatting and go through Sanitize. Public form
// fields (quotes, messages, bookings) are plain text and go through
// StripTags, which drops all markup.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcOnce   sync.Once
	ugc       *bluemonday.Policy
	stripOnce sync.Once
	strict    *bluemonday.Policy
)

func ugcPolicy() *bluemonday.Policy {
	ugcOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		ugc = p
	})
	return ugc
}

func strictPolicy() *bluemonday.Policy {
	stripOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// Sanitize keeps safe formatting markup and removes scripts, event
// handlers, iframes and javascript: links.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ugcPolicy().Sanitize(s))
}

// StripTags removes every tag and returns plain text. Entities that the
// policy escapes are decoded again so "Tom & Jerry" round-trips unchanged.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy().Sanitize(s)))
}
