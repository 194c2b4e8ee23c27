package model

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// inlineTags are the body-markup tags the notification specification allows.
// Anything else is not markup and is kept verbatim.
var inlineTags = map[string]bool{
	"b":   true,
	"i":   true,
	"u":   true,
	"a":   true,
	"img": true,
}

// StripMarkup removes the inline formatting tags (<b>, <i>, <u>, <a>, <img>)
// from a notification body and decodes character entities.
// Text between tags is kept; image tags are dropped entirely.
func StripMarkup(body string) string {
	if !strings.ContainsAny(body, "<&") {
		return body
	}

	var out bytes.Buffer
	z := html.NewTokenizer(strings.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// At EOF Raw holds any unfinished tag, such as "<b then c"; it is text.
			out.Write(z.Raw())
			return out.String()
		case html.TextToken:
			out.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if inlineTags[string(name)] {
				continue
			}
			out.Write(z.Raw())
		default:
			out.Write(z.Raw())
		}
	}
}
