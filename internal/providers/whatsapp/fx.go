package whatsapp

import (
	"github.com/smallbiznis/vyapar/internal/config"
	invoicedomain "github.com/smallbiznis/vyapar/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("whatsapp",
	fx.Provide(Provide),
	fx.Provide(NewDocumentSender),
)

func Provide(cfg config.Config, log *zap.Logger) *Client {
	client := NewClient(cfg.WhatsApp, log)
	if !client.Enabled() {
		log.Info("whatsapp delivery disabled")
	}
	return client
}

// NewDocumentSender is nil when credentials are missing, which turns invoice
// delivery off.
func NewDocumentSender(client *Client) invoicedomain.DocumentSender {
	if !client.Enabled() {
		return nil
	}
	return client
}
