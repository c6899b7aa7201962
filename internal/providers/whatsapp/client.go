// Package whatsapp talks to the WhatsApp Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/smallbiznis/vyapar/internal/config"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://graph.facebook.com"

var (
	ErrNotConfigured = errors.New("whatsapp_not_configured")
	ErrEmptyMessage  = errors.New("whatsapp_message_empty")
	ErrNoRecipient   = errors.New("whatsapp_recipient_missing")
)

// APIError is a non-2xx response from the Graph API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error %d: %s", e.StatusCode, e.Message)
}

type graphErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type mediaResponse struct {
	ID string `json:"id"`
}

type messageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type Client struct {
	token         string
	phoneNumberID string
	apiVersion    string
	baseURL       string
	client        *http.Client
	log           *zap.Logger
}

type Option func(*Client)

// WithBaseURL points the client at another Graph API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.client = client }
}

func NewClient(cfg config.WhatsAppConfig, log *zap.Logger, opts ...Option) *Client {
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = "v18.0"
	}
	c := &Client{
		token:         strings.TrimSpace(cfg.Token),
		phoneNumberID: strings.TrimSpace(cfg.PhoneNumberID),
		apiVersion:    version,
		baseURL:       defaultBaseURL,
		client:        &http.Client{Timeout: 30 * time.Second},
		log:           log.Named("whatsapp.client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Enabled() bool {
	return c.token != "" && c.phoneNumberID != ""
}

// SendText sends a plain text message and returns the message id.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return "", ErrNoRecipient
	}
	if strings.TrimSpace(body) == "" {
		return "", ErrEmptyMessage
	}

	return c.sendMessage(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	})
}

// SendDocument uploads content as a PDF and sends it as a document message.
func (c *Client) SendDocument(ctx context.Context, to, filename, caption string, content []byte) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoRecipient
	}
	if len(content) == 0 {
		return ErrEmptyMessage
	}

	mediaID, err := c.uploadMedia(ctx, filename, content)
	if err != nil {
		return err
	}

	document := map[string]string{
		"id":       mediaID,
		"filename": filename,
	}
	if caption != "" {
		document["caption"] = caption
	}
	messageID, err := c.sendMessage(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "document",
		"document":          document,
	})
	if err != nil {
		return err
	}

	c.log.Info("document sent",
		zap.String("filename", filename),
		zap.String("media_id", mediaID),
		zap.String("message_id", messageID),
	)
	return nil
}

func (c *Client) uploadMedia(ctx context.Context, filename string, content []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", err
	}
	if err := writer.WriteField("type", "application/pdf"); err != nil {
		return "", err
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	var media mediaResponse
	if err := c.do(ctx, "/media", writer.FormDataContentType(), &body, &media); err != nil {
		return "", err
	}
	if media.ID == "" {
		return "", errors.New("whatsapp_media_id_missing")
	}
	return media.ID, nil
}

func (c *Client) sendMessage(ctx context.Context, payload map[string]any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	var resp messageResponse
	if err := c.do(ctx, "/messages", "application/json", bytes.NewReader(raw), &resp); err != nil {
		return "", err
	}
	if len(resp.Messages) == 0 {
		return "", nil
	}
	return resp.Messages[0].ID, nil
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	endpoint := fmt.Sprintf("%s/%s/%s%s", c.baseURL, c.apiVersion, c.phoneNumberID, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "whatsapp_request_failed"}
		var graphErr graphErrorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&graphErr); err == nil {
			if msg := strings.TrimSpace(graphErr.Error.Message); msg != "" {
				apiErr.Message = msg
			}
		}
		return apiErr
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
