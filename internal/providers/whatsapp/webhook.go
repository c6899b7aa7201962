package whatsapp

import "strings"

// WebhookPayload is the body Meta posts to the message webhook.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []WebhookMessage `json:"messages"`
}

type WebhookMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
}

// InboundText is a text message pulled out of a webhook payload.
type InboundText struct {
	From string
	ID   string
	Body string
}

// TextMessages returns every non-empty text message in the payload in the
// order Meta delivered them. Other message types are skipped.
func (p WebhookPayload) TextMessages() []InboundText {
	var out []InboundText
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text == nil {
					continue
				}
				body := strings.TrimSpace(msg.Text.Body)
				if body == "" || msg.From == "" {
					continue
				}
				out = append(out, InboundText{From: msg.From, ID: msg.ID, Body: body})
			}
		}
	}
	return out
}

// VerifyChallenge answers the subscription handshake. It returns the
// challenge and true when mode and token match.
func VerifyChallenge(verifyToken, mode, token, challenge string) (string, bool) {
	if verifyToken == "" || mode != "subscribe" || token != verifyToken {
		return "", false
	}
	return challenge, true
}
