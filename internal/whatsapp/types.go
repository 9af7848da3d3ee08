package whatsapp

// Webhook envelope types for the Cloud API. The pipeline only reads
// entry[0].changes[0].value.messages[0]; the rest of the envelope is
// carried for completeness.

// WebhookPayload is the top-level webhook POST body.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry groups changes for one WhatsApp business account.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change carries one value blob.
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value holds inbound messages and delivery statuses.
type Value struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []InboundMessage `json:"messages"`
}

// MediaRef references an uploaded binary on the platform.
type MediaRef struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// TextBody wraps the body of a plain text message.
type TextBody struct {
	Body string `json:"body"`
}

// InboundMessage is one user message inside the envelope.
type InboundMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Timestamp string    `json:"timestamp"`
	Type      string    `json:"type"`
	Text      *TextBody `json:"text,omitempty"`
	Image     *MediaRef `json:"image,omitempty"`
	Audio     *MediaRef `json:"audio,omitempty"`
	Video     *MediaRef `json:"video,omitempty"`
	Document  *MediaRef `json:"document,omitempty"`
}

// Body returns the free text of the message: the text body for text
// messages, the caption for captioned media.
func (m *InboundMessage) Body() string {
	if m.Text != nil {
		return m.Text.Body
	}
	if ref := m.Media(); ref != nil {
		return ref.Caption
	}
	return ""
}

// Media returns the media reference for the message kind, or nil.
func (m *InboundMessage) Media() *MediaRef {
	switch m.Type {
	case "image":
		return m.Image
	case "audio":
		return m.Audio
	case "video":
		return m.Video
	case "document":
		return m.Document
	}
	return nil
}

// FirstMessage digs the first inbound message out of the envelope.
func (p *WebhookPayload) FirstMessage() *InboundMessage {
	if len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return nil
	}
	msgs := p.Entry[0].Changes[0].Value.Messages
	if len(msgs) == 0 {
		return nil
	}
	return &msgs[0]
}
