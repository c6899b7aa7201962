package domain

import (
	"context"
)

//go:generate mockgen -source=service.go -destination=../mocks/mock_service.go -package=mocks

// Intent is a deterministic command recognised from free text.
type Intent string

const (
	IntentRevenue     Intent = "REVENUE"
	IntentProfit      Intent = "PROFIT"
	IntentLowStock    Intent = "LOW_STOCK"
	IntentProduction  Intent = "PRODUCTION"
	IntentTopProducts Intent = "TOP_PRODUCTS"
	IntentHelp        Intent = "HELP"
	IntentInvoiceSend Intent = "INVOICE_SEND"
)

// Route names the branch that produced a reply.
type Route string

const (
	RouteUnknownSender Route = "unknown_sender"
	RouteFollowUp      Route = "follow_up"
	RouteIntent        Route = "intent"
	RouteInvoice       Route = "invoice"
	RouteGreeting      Route = "greeting"
	RouteAI            Route = "ai"
)

// InboundMessage is one text message received from a phone number.
type InboundMessage struct {
	From string
	ID   string
	Body string
}

type Reply struct {
	Text   string `json:"text"`
	Route  Route  `json:"route"`
	Intent Intent `json:"intent,omitempty"`
}

type Service interface {
	// Handle routes one message and returns the reply. It always answers;
	// failures become a short apology.
	Handle(ctx context.Context, msg InboundMessage) Reply
	// Process handles each message and sends the reply back to its sender.
	// It returns the number of replies delivered.
	Process(ctx context.Context, msgs []InboundMessage) int
}

// Messenger delivers a text reply.
type Messenger interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// InvoiceSender sends an invoice PDF to the linked customer, or to `to`
// when it is non-empty.
type InvoiceSender interface {
	SendWhatsApp(ctx context.Context, id string, to string) (string, error)
}

// Completer answers free-form questions.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
