package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BuildStatement orders postings by date and walks them into entries with a
// running balance. Postings on the same instant keep their input order.
func BuildStatement(postings []Posting) ([]Entry, Totals) {
	ordered := make([]Posting, len(postings))
	copy(ordered, postings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	totals := Totals{
		Documented: decimal.Zero,
		Paid:       decimal.Zero,
		Refunded:   decimal.Zero,
	}
	entries := make([]Entry, 0, len(ordered))
	balance := decimal.Zero
	for _, p := range ordered {
		balance = balance.Add(p.Debit).Sub(p.Credit)
		entries = append(entries, Entry{
			Date:           p.Date,
			Type:           p.Type,
			Reference:      p.Reference,
			DocumentID:     p.DocumentID,
			Debit:          p.Debit,
			Credit:         p.Credit,
			RunningBalance: balance,
		})

		switch p.Type {
		case EntryTypeInvoice, EntryTypePurchase:
			totals.Documented = totals.Documented.Add(p.Debit)
		case EntryTypePayment:
			totals.Paid = totals.Paid.Add(p.Credit)
		case EntryTypeRefund:
			totals.Refunded = totals.Refunded.Add(p.Debit)
		}
	}
	return entries, totals
}
