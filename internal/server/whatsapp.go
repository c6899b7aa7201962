package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	chatdomain "github.com/smallbiznis/vyapar/internal/chat/domain"
	"github.com/smallbiznis/vyapar/internal/providers/whatsapp"
	"go.uber.org/zap"
)

func (s *Server) VerifyWhatsAppWebhook(c *gin.Context) {
	challenge, ok := whatsapp.VerifyChallenge(
		s.cfg.WhatsApp.VerifyToken,
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	c.String(http.StatusOK, challenge)
}

// ReceiveWhatsAppWebhook always acknowledges so the platform does not
// redeliver messages that were already answered.
func (s *Server) ReceiveWhatsAppWebhook(c *gin.Context) {
	var payload whatsapp.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.log.Warn("invalid whatsapp webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	texts := payload.TextMessages()
	if len(texts) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	msgs := make([]chatdomain.InboundMessage, 0, len(texts))
	for _, text := range texts {
		msgs = append(msgs, chatdomain.InboundMessage{
			From: text.From,
			ID:   text.ID,
			Body: text.Body,
		})
	}
	c.Set(contextChatSenderKey, msgs[0].From)

	s.chatSvc.Process(c.Request.Context(), msgs)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type sendTextRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

func (s *Server) SendWhatsAppText(c *gin.Context) {
	var req sendTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	to := strings.TrimSpace(req.To)
	if to == "" {
		AbortWithError(c, newValidationError("to", "invalid_to", "recipient is required"))
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		AbortWithError(c, newValidationError("message", "invalid_message", "message is required"))
		return
	}
	if s.messenger == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	messageID, err := s.messenger.SendText(c.Request.Context(), to, message)
	if err != nil {
		s.log.Warn("whatsapp send failed", zap.Error(err))
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"status":     "sent",
		"message_id": messageID,
	}})
}
