package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	chatdomain "github.com/smallbiznis/vyapar/internal/chat/domain"
	chatmocks "github.com/smallbiznis/vyapar/internal/chat/mocks"
	"github.com/smallbiznis/vyapar/internal/config"
	"github.com/stretchr/testify/assert"
)

const inboundPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "1",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "messages": [
          {"from": "919800000001", "id": "wamid.1", "timestamp": "1700000000", "type": "text", "text": {"body": "revenue"}},
          {"from": "919800000001", "id": "wamid.2", "timestamp": "1700000001", "type": "image"}
        ]
      }
    }]
  }]
}`

func newWebhookRouter(srv *Server) *gin.Engine {
	router := newTestRouter()
	router.GET("/webhook/whatsapp", srv.VerifyWhatsAppWebhook)
	router.POST("/webhook/whatsapp", srv.ReceiveWhatsAppWebhook)
	return router
}

func TestVerifyWhatsAppWebhook(t *testing.T) {
	srv := newTestServer()
	srv.cfg = config.Config{WhatsApp: config.WhatsAppConfig{VerifyToken: "hush"}}
	router := newWebhookRouter(srv)

	resp := doJSON(t, router, http.MethodGet, "/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=hush&hub.challenge=1234", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "1234", resp.Body.String())

	resp = doJSON(t, router, http.MethodGet, "/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1234", "", nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestReceiveWhatsAppWebhookProcessesTextOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	chat := chatmocks.NewMockService(ctrl)

	srv := newTestServer()
	srv.chatSvc = chat
	router := newWebhookRouter(srv)

	chat.EXPECT().
		Process(gomock.Any(), []chatdomain.InboundMessage{{From: "919800000001", ID: "wamid.1", Body: "revenue"}}).
		Return(1)

	resp := doJSON(t, router, http.MethodPost, "/webhook/whatsapp", inboundPayload, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestReceiveWhatsAppWebhookAcknowledgesGarbage(t *testing.T) {
	ctrl := gomock.NewController(t)
	chat := chatmocks.NewMockService(ctrl)

	srv := newTestServer()
	srv.chatSvc = chat
	router := newWebhookRouter(srv)

	resp := doJSON(t, router, http.MethodPost, "/webhook/whatsapp", `{"object":`, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodPost, "/webhook/whatsapp", `{"object":"whatsapp_business_account","entry":[]}`, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestSendWhatsAppText(t *testing.T) {
	ctrl := gomock.NewController(t)
	messenger := chatmocks.NewMockMessenger(ctrl)

	srv := newTestServer()
	router := newTestRouter()
	router.POST("/api/whatsapp/send-text", srv.SendWhatsAppText)

	resp := doJSON(t, router, http.MethodPost, "/api/whatsapp/send-text", `{"to":"919800000001","message":"hi"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)

	srv.messenger = messenger
	resp = doJSON(t, router, http.MethodPost, "/api/whatsapp/send-text", `{"to":"","message":"hi"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	messenger.EXPECT().SendText(gomock.Any(), "919800000001", "hi").Return("wamid.9", nil)
	resp = doJSON(t, router, http.MethodPost, "/api/whatsapp/send-text", `{"to":"919800000001","message":"hi"}`, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "wamid.9")

	messenger.EXPECT().SendText(gomock.Any(), "919800000001", "hi").Return("", errors.New("graph down"))
	resp = doJSON(t, router, http.MethodPost, "/api/whatsapp/send-text", `{"to":"919800000001","message":"hi"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
