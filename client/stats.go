package client

import (
	"github.com/shopspring/decimal"

	"druckerei-client/models"
)

// Stats are the dashboard's summary card figures, derived from one cached
// batch of the unfiltered collection.
type Stats struct {
	Count       int
	TotalAmount decimal.Decimal
	AmountPaid  decimal.Decimal
	Outstanding decimal.Decimal
	ByStatus    map[string]int
}

func purchaseStats(items []models.MaterialPurchase) Stats {
	st := newStats()
	for _, p := range items {
		st.add(p.TotalAmount, p.AmountPaid, p.Balance, p.Status)
	}
	return st
}

func orderStats(items []models.Order) Stats {
	st := newStats()
	for _, o := range items {
		st.add(o.TotalAmount, o.AmountPaid, o.Balance, o.Status)
	}
	return st
}

func newStats() Stats {
	return Stats{ByStatus: make(map[string]int)}
}

func (s *Stats) add(total, paid, balance decimal.Decimal, status models.PaymentStatus) {
	s.Count++
	s.TotalAmount = s.TotalAmount.Add(total)
	s.AmountPaid = s.AmountPaid.Add(paid)
	s.Outstanding = s.Outstanding.Add(models.DisplayBalance(balance))
	s.ByStatus[status.String()]++
}
