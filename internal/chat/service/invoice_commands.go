package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/smallbiznis/vyapar/internal/chat/domain"
	invoicedomain "github.com/smallbiznis/vyapar/internal/invoice/domain"
	"go.uber.org/zap"
)

var (
	reLastInvoice = regexp.MustCompile(`(?i)^(?:send\s+)?(?:last|latest|recent)\s+(?:invoice|bill)$`)
	reLastHindi   = regexp.MustCompile(`(?i)^(?:pichla|aakhri|last)\s+(?:bill|invoice)\s*(?:bhejo|bhej|send)?$`)
	reSendTo      = regexp.MustCompile(`(?i)^send\s+(?:invoice|bill)\s+to\s+(.+)$`)
	reSendName    = regexp.MustCompile(`(?i)^send\s+(.+?)\s+(?:invoice|bill)$`)
	reHindiName   = regexp.MustCompile(`(?i)^(.+?)\s+(?:ka|ko|ki)\s+(?:bill|invoice)\s+(?:bhejo|bhej|send\s*karo)$`)
	reSendBare    = regexp.MustCompile(`(?i)^(?:send\s+(?:invoice|bill)|(?:invoice|bill)\s+(?:bhejo|bhej))$`)
	reCreate      = regexp.MustCompile(`(?i)(?:create|bana|banao|generate|new)\s+(?:invoice|bill)`)
)

const (
	createRefusal = "Invoice banane ke liye proper details chahiye boss.\n\n" +
		"Dashboard pe jaake banao:\n" +
		". Customer name\n" +
		". Product + quantity\n" +
		". Tax + discount\n\n" +
		"WhatsApp se sirf send kar sakte ho."
	customerPrompt = "Kis customer ka invoice bhejna hai? Naam bhejo."
)

type invoiceCommand int

const (
	invoiceNone invoiceCommand = iota
	invoiceCreate
	invoiceCopy
	invoiceLast
	invoiceByName
	invoiceAskCustomer
)

// parseInvoiceCommand classifies text and extracts the customer name for
// name-based sends.
func parseInvoiceCommand(text string) (invoiceCommand, string) {
	cmd := strings.TrimSpace(text)
	switch {
	case cmd == "":
		return invoiceNone, ""
	case reCreate.MatchString(cmd):
		return invoiceCreate, ""
	case strings.EqualFold(cmd, "copy"):
		return invoiceCopy, ""
	case reLastInvoice.MatchString(cmd), reLastHindi.MatchString(cmd):
		return invoiceLast, ""
	case reSendBare.MatchString(cmd):
		return invoiceAskCustomer, ""
	}
	for _, re := range []*regexp.Regexp{reSendTo, reSendName, reHindiName} {
		if m := re.FindStringSubmatch(cmd); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				return invoiceByName, name
			}
		}
	}
	return invoiceNone, ""
}

func (s *Service) handleInvoiceCommand(ctx context.Context, sender string, kind invoiceCommand, name string) string {
	switch kind {
	case invoiceCreate:
		return createRefusal
	case invoiceCopy:
		return s.sendCopy(ctx, sender)
	case invoiceAskCustomer:
		s.sessions.Set(sender, session{intent: domain.IntentInvoiceSend, awaiting: awaitingCustomer}, s.rules.Get().Chat.SessionTTL)
		return customerPrompt
	case invoiceLast:
		return s.sendLatest(ctx, sender, "")
	case invoiceByName:
		return s.sendLatest(ctx, sender, name)
	default:
		return "Invoice command samajh nahi aaya. Try: send last invoice"
	}
}

func (s *Service) sendLatest(ctx context.Context, sender, customerName string) string {
	companyID, _ := companyIDFrom(ctx)
	ref, err := s.repo.LatestSendableInvoice(ctx, s.db, companyID, customerName)
	if err != nil {
		s.log.Error("latest invoice lookup failed", zap.Error(err))
		return apologyReply
	}
	if ref == nil {
		if customerName != "" {
			return fmt.Sprintf("'%s' ka koi invoice nahi mila boss.", customerName)
		}
		return "Koi invoice nahi mila boss."
	}

	if _, err := s.invoices.SendWhatsApp(ctx, ref.ID.String(), ""); err != nil {
		s.log.Warn("invoice send failed",
			zap.String("invoice_id", ref.ID.String()),
			zap.Error(err),
		)
		return invoiceSendFailure(err, "Invoice bhejne me problem hua. Dobara try karo.")
	}

	s.lastSent.Set(sender, ref.ID.String(), s.rules.Get().Chat.LastInvoiceTTL)
	return fmt.Sprintf("Invoice %s bhej di %s ko.\nReply 'copy' agar apne liye chahiye.", ref.Number, ref.CustomerName)
}

func (s *Service) sendCopy(ctx context.Context, sender string) string {
	invoiceID, ok := s.lastSent.Get(sender)
	if !ok {
		return "Pehle koi invoice send karo, phir copy milegi."
	}

	if _, err := s.invoices.SendWhatsApp(ctx, invoiceID, sender); err != nil {
		s.log.Warn("invoice copy failed",
			zap.String("invoice_id", invoiceID),
			zap.Error(err),
		)
		if errors.Is(err, invoicedomain.ErrNotFound) {
			return "Invoice nahi mila. Dobara send karo."
		}
		return invoiceSendFailure(err, "Copy bhejne me problem hua. Dobara try karo.")
	}
	return "Invoice copy bhej di boss."
}

func invoiceSendFailure(err error, fallback string) string {
	switch {
	case errors.Is(err, invoicedomain.ErrNoRecipient):
		return "Customer ka phone number nahi hai."
	case errors.Is(err, invoicedomain.ErrDeliveryDisabled), errors.Is(err, invoicedomain.ErrRenderingDisabled):
		return "Invoice bhejne ki service abhi band hai."
	default:
		return fallback
	}
}
