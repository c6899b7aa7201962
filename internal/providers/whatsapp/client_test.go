package whatsapp

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smallbiznis/vyapar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.WhatsAppConfig{
		Token:         "tok",
		PhoneNumberID: "12345",
		APIVersion:    "v18.0",
	}, zap.NewNop(), WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestSendText(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v18.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"messages":[{"id":"wamid.1"}]}`)
	})

	id, err := client.SendText(t.Context(), "919800000001", "hello")
	require.NoError(t, err)
	assert.Equal(t, "wamid.1", id)
	assert.Equal(t, "whatsapp", got["messaging_product"])
	assert.Equal(t, "text", got["type"])
	assert.Equal(t, map[string]any{"body": "hello"}, got["text"])
}

func TestSendDocumentUploadsThenSends(t *testing.T) {
	var calls []string
	var document map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/v18.0/12345/media":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "whatsapp", r.FormValue("messaging_product"))
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			assert.Equal(t, "INV-1.pdf", header.Filename)
			content, _ := io.ReadAll(file)
			assert.Equal(t, "%PDF-1.3", string(content))
			_, _ = io.WriteString(w, `{"id":"media-9"}`)
		case "/v18.0/12345/messages":
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			document, _ = payload["document"].(map[string]any)
			_, _ = io.WriteString(w, `{"messages":[{"id":"wamid.2"}]}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	err := client.SendDocument(t.Context(), "919800000001", "INV-1.pdf", "Invoice INV-1", []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/v18.0/12345/media", "/v18.0/12345/messages"}, calls)
	assert.Equal(t, "media-9", document["id"])
	assert.Equal(t, "INV-1.pdf", document["filename"])
	assert.Equal(t, "Invoice INV-1", document["caption"])
}

func TestAPIErrorCarriesGraphMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Invalid OAuth access token."}}`)
	})

	_, err := client.SendText(t.Context(), "919800000001", "hello")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid OAuth access token.", apiErr.Message)
}

func TestValidation(t *testing.T) {
	disabled := NewClient(config.WhatsAppConfig{}, zap.NewNop())
	_, err := disabled.SendText(t.Context(), "91", "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, NewDocumentSender(disabled))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err = client.SendText(t.Context(), " ", "hi")
	assert.ErrorIs(t, err, ErrNoRecipient)
	_, err = client.SendText(t.Context(), "91", "  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.ErrorIs(t, client.SendDocument(t.Context(), "91", "a.pdf", "", nil), ErrEmptyMessage)
	assert.NotNil(t, NewDocumentSender(client))
}

func TestTextMessages(t *testing.T) {
	raw := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[
		{"from":"919800000001","id":"a","type":"text","text":{"body":" revenue "}},
		{"from":"919800000001","id":"b","type":"audio"},
		{"from":"919800000002","id":"c","type":"text","text":{"body":"   "}}
	]}}]}]}`
	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	msgs := payload.TextMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, InboundText{From: "919800000001", ID: "a", Body: "revenue"}, msgs[0])
}

func TestVerifyChallenge(t *testing.T) {
	challenge, ok := VerifyChallenge("secret", "subscribe", "secret", "42")
	assert.True(t, ok)
	assert.Equal(t, "42", challenge)

	_, ok = VerifyChallenge("secret", "subscribe", "wrong", "42")
	assert.False(t, ok)
	_, ok = VerifyChallenge("", "subscribe", "", "42")
	assert.False(t, ok)
}
