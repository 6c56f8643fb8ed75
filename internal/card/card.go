// Package card renders failure events into Google Chat card messages.
//
// Every function in this package is pure: it reads only its arguments and
// allocates only its result, so it is safe to call concurrently.
package card

import (
	"strings"

	"github.com/telhawk-systems/telhawk-notify/internal/models"
)

const (
	// HeaderTitle is the fixed card header title.
	HeaderTitle = "Alert!"
	// HeaderImageURL is the fixed card header avatar.
	HeaderImageURL = "https://developers.google.com/chat/images/quickstart-app-avatar.png"

	// CallOutPrefix prefixes categories in the top-level text.
	CallOutPrefix = "#"
	// MentionPrefix prefixes categories in the body greeting.
	MentionPrefix = "@"

	ContinueLabel = "Continue"
	AbortLabel    = "Abort"

	recipientSeparator = ", "
)

// Message is the top-level webhook payload.
type Message struct {
	Text  string `json:"text"`
	Cards []Card `json:"cards"`
}

// Card is a single card with a header and ordered sections.
type Card struct {
	Header   Header    `json:"header"`
	Sections []Section `json:"sections"`
}

// Header is the card title bar.
type Header struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

// Section groups widgets.
type Section struct {
	Widgets []Widget `json:"widgets"`
}

// Widget is either a text paragraph or a button list. Buttons is a pointer
// so an empty list still encodes as "buttons":[] while a paragraph widget
// omits the key.
type Widget struct {
	TextParagraph *TextParagraph `json:"textParagraph,omitempty"`
	Buttons       *[]Button      `json:"buttons,omitempty"`
}

// TextParagraph holds formatted body text.
type TextParagraph struct {
	Text string `json:"text"`
}

// Button is a clickable card element.
type Button struct {
	TextButton TextButton `json:"textButton"`
}

// TextButton is a labeled button with a click action.
type TextButton struct {
	Text    string  `json:"text"`
	OnClick OnClick `json:"onClick"`
}

// OnClick describes what happens when a button is activated.
type OnClick struct {
	OpenLink OpenLink `json:"openLink"`
}

// OpenLink opens URL in a new tab.
type OpenLink struct {
	URL string `json:"url"`
}

// FormatRecipients prefixes every category and joins them with ", ".
// Order is preserved; nothing is sorted or deduplicated.
func FormatRecipients(categories []string, prefix string) string {
	if len(categories) == 0 {
		return ""
	}

	prefixed := make([]string, len(categories))
	for i, category := range categories {
		prefixed[i] = prefix + category
	}
	return strings.Join(prefixed, recipientSeparator)
}

// HeaderMessage builds the card body greeting. Event fields are inserted
// verbatim inside the markup.
func HeaderMessage(event *models.FailureEvent) string {
	var b strings.Builder
	b.WriteString("Hi ")
	b.WriteString(FormatRecipients(event.Categories, MentionPrefix))
	b.WriteString(", The workflow: <b><font color='black'>")
	b.WriteString(event.Workflow)
	b.WriteString("</font></b>; failed for the production ID: <b><font color='black'>")
	b.WriteString(event.ExcID)
	b.WriteString("</font></b>. This is the error message: <font color='#FF0000'>")
	b.WriteString(event.Message)
	b.WriteString("</font>")
	return b.String()
}

// Buttons returns the action buttons for an event: Continue first, then
// Abort, each only when its URL is present.
func Buttons(event *models.FailureEvent) []Button {
	buttons := make([]Button, 0, 2)
	if event.ContinueURL != nil {
		buttons = append(buttons, linkButton(ContinueLabel, *event.ContinueURL))
	}
	if event.AbortURL != nil {
		buttons = append(buttons, linkButton(AbortLabel, *event.AbortURL))
	}
	return buttons
}

func linkButton(label, url string) Button {
	return Button{
		TextButton: TextButton{
			Text: label,
			OnClick: OnClick{
				OpenLink: OpenLink{URL: url},
			},
		},
	}
}

// Compose renders the complete card message for an event.
func Compose(event *models.FailureEvent) *Message {
	buttons := Buttons(event)
	return &Message{
		Text: FormatRecipients(event.Categories, CallOutPrefix),
		Cards: []Card{
			{
				Header: Header{
					Title:    HeaderTitle,
					ImageURL: HeaderImageURL,
				},
				Sections: []Section{
					{Widgets: []Widget{{TextParagraph: &TextParagraph{Text: HeaderMessage(event)}}}},
					{Widgets: []Widget{{Buttons: &buttons}}},
				},
			},
		},
	}
}
