package chat

import (
	"github.com/smallbiznis/vyapar/internal/chat/domain"
	"github.com/smallbiznis/vyapar/internal/chat/repository"
	"github.com/smallbiznis/vyapar/internal/chat/service"
	invoicedomain "github.com/smallbiznis/vyapar/internal/invoice/domain"
	"github.com/smallbiznis/vyapar/internal/providers/whatsapp"
	"go.uber.org/fx"
)

var Module = fx.Module("chat.service",
	fx.Provide(repository.Provide),
	fx.Provide(NewMessenger),
	fx.Provide(NewInvoiceSender),
	fx.Provide(service.NewService),
)

// NewMessenger is nil when WhatsApp credentials are missing.
func NewMessenger(client *whatsapp.Client) domain.Messenger {
	if client == nil || !client.Enabled() {
		return nil
	}
	return client
}

func NewInvoiceSender(svc invoicedomain.Service) domain.InvoiceSender {
	return svc
}
