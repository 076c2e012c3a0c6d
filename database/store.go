// Package database holds the stub backend's in-memory state. The stub
// server exists so the data core can be developed and integration-tested
// without the production backend; nothing here persists across restarts.
package database

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"druckerei-client/filter"
	"druckerei-client/models"
)

var ErrNotFound = errors.New("not found")

// Store is the stub backend's source of truth. The server recomputes every
// derived aggregate itself, so a client whose optimistic math drifts gets
// corrected by the confirmed payload.
type Store struct {
	mu        sync.RWMutex
	purchases []models.MaterialPurchase
	orders    []models.Order
	suppliers []models.Supplier
	orderSeq  int
}

// DB is the process-wide store, set up once in main.
var DB *Store

func Connect() {
	DB = &Store{}
	DB.Seed()
}

// ListQuery mirrors the backend's list query params.
type ListQuery struct {
	Search   string
	Status   string
	Category string
	From     string
	To       string
	Page     int
	PageSize int
}

func matchQuery(q ListQuery, searchFields []string, status, category, date string) bool {
	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		hit := false
		for _, f := range searchFields {
			if strings.Contains(strings.ToLower(f), s) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if q.Status != "" && status != q.Status {
		return false
	}
	if q.Category != "" && category != q.Category {
		return false
	}
	if q.From != "" || q.To != "" {
		d, ok := filter.ParseDate(date)
		if !ok {
			return false
		}
		if from, ok := filter.ParseDate(q.From); ok && d.Before(from) {
			return false
		}
		if to, ok := filter.ParseDate(q.To); ok && d.After(to.Add(24*time.Hour-time.Nanosecond)) {
			return false
		}
	}
	return true
}

func page[T any](items []T, q ListQuery) []T {
	if q.PageSize < 1 {
		return items
	}
	p := q.Page
	if p < 1 {
		p = 1
	}
	start := (p - 1) * q.PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + q.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ---- Purchases

func (s *Store) ListPurchases(q ListQuery) ([]models.MaterialPurchase, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]models.MaterialPurchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		if matchQuery(q, []string{p.SupplierName, p.Description, p.Category}, p.Status.String(), p.Category, p.Date) {
			matched = append(matched, p.Clone())
		}
	}
	total := len(matched)
	return page(matched, q), total
}

func (s *Store) GetPurchase(id string) (models.MaterialPurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.purchases {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return models.MaterialPurchase{}, ErrNotFound
}

func (s *Store) CreatePurchase(p models.MaterialPurchase) models.MaterialPurchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	p = models.NormalizeMaterialPurchase(p)
	s.purchases = append([]models.MaterialPurchase{p}, s.purchases...)
	return p.Clone()
}

func (s *Store) DeletePurchase(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.purchases {
		if p.ID == id {
			s.purchases = append(s.purchases[:i], s.purchases[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// UpdatePurchase applies fn to the purchase with the given id under the
// write lock and returns the recomputed result. All sub-resource mutations
// (payments, notes, installments) go through here.
func (s *Store) UpdatePurchase(id string, fn func(*models.MaterialPurchase) error) (models.MaterialPurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.purchases {
		if s.purchases[i].ID != id {
			continue
		}
		p := s.purchases[i].Clone()
		if err := fn(&p); err != nil {
			return models.MaterialPurchase{}, err
		}
		p.UpdatedAt = time.Now()
		p = models.NormalizeMaterialPurchase(p)
		s.purchases[i] = p
		return p.Clone(), nil
	}
	return models.MaterialPurchase{}, ErrNotFound
}

// ---- Orders

func (s *Store) ListOrders(q ListQuery) ([]models.Order, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		fields := []string{o.OrderNumber, o.CustomerName, o.Category}
		for _, it := range o.Items {
			fields = append(fields, it.Description)
		}
		if matchQuery(q, fields, o.Status.String(), o.Category, o.Date) {
			matched = append(matched, o.Clone())
		}
	}
	total := len(matched)
	return page(matched, q), total
}

func (s *Store) GetOrder(id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return models.Order{}, ErrNotFound
}

func (s *Store) CreateOrder(o models.Order) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = uuid.NewString()
	if o.OrderNumber == "" {
		s.orderSeq++
		o.OrderNumber = fmt.Sprintf("ORD-%04d", 1000+s.orderSeq)
	}
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	o = models.NormalizeOrder(o)
	s.orders = append([]models.Order{o}, s.orders...)
	return o.Clone()
}

func (s *Store) DeleteOrder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.orders {
		if o.ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) UpdateOrder(id string, fn func(*models.Order) error) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		o := s.orders[i].Clone()
		if err := fn(&o); err != nil {
			return models.Order{}, err
		}
		o.UpdatedAt = time.Now()
		o = models.NormalizeOrder(o)
		s.orders[i] = o
		return o.Clone(), nil
	}
	return models.Order{}, ErrNotFound
}

// ---- Suppliers

func (s *Store) ListSuppliers() []models.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.Supplier(nil), s.suppliers...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Seed loads a small data set good enough to click through the dashboard.
func (s *Store) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.suppliers = []models.Supplier{
		{ID: uuid.NewString(), Name: "Papier Müller GmbH", ContactName: "K. Müller", Email: "info@papier-mueller.example", Active: true},
		{ID: uuid.NewString(), Name: "Farben Acme AG", ContactName: "J. Weber", Email: "verkauf@acme-farben.example", Active: true},
		{ID: uuid.NewString(), Name: "Druckplatten Nord", Active: true},
	}

	money := func(v string) decimal.Decimal { return decimal.RequireFromString(v) }
	now := time.Now()

	s.purchases = nil
	add := func(p models.MaterialPurchase) {
		p.ID = uuid.NewString()
		p.CreatedAt = now
		p.UpdatedAt = now
		s.purchases = append(s.purchases, models.NormalizeMaterialPurchase(p))
	}

	add(models.MaterialPurchase{
		SupplierID:   s.suppliers[0].ID,
		SupplierName: s.suppliers[0].Name,
		Description:  "80g offset paper, 40 reams",
		Category:     "paper",
		Date:         now.AddDate(0, 0, -12).Format("2006-01-02"),
		TotalAmount:  money("1000"),
		Payments: []models.Payment{
			{ID: uuid.NewString(), Amount: money("400"), Method: "bank_transfer", PaidAt: now.AddDate(0, 0, -10)},
		},
	})
	add(models.MaterialPurchase{
		SupplierID:   s.suppliers[1].ID,
		SupplierName: s.suppliers[1].Name,
		Description:  "CMYK ink set",
		Category:     "ink",
		Date:         now.AddDate(0, 0, -30).Format("2006-01-02"),
		TotalAmount:  money("500"),
		Payments: []models.Payment{
			{ID: uuid.NewString(), Amount: money("500"), Method: "cash", PaidAt: now.AddDate(0, 0, -28)},
		},
	})
	add(models.MaterialPurchase{
		SupplierID:         s.suppliers[2].ID,
		SupplierName:       s.suppliers[2].Name,
		Description:        "Aluminium printing plates",
		Category:           "plates",
		Date:               "n/a", // deliberately unparseable, exercises the client's unknown-date bucket
		TotalAmount:        money("1800"),
		HasInstallmentPlan: true,
		Installments: []models.Installment{
			{ID: uuid.NewString(), Amount: money("900"), DueDate: now.AddDate(0, 1, 0).Format("2006-01-02")},
			{ID: uuid.NewString(), Amount: money("900"), DueDate: now.AddDate(0, 2, 0).Format("2006-01-02")},
		},
	})

	s.orders = nil
	addOrder := func(o models.Order) {
		o.ID = uuid.NewString()
		o.CreatedAt = now
		o.UpdatedAt = now
		s.orders = append(s.orders, models.NormalizeOrder(o))
	}

	addOrder(models.Order{
		OrderNumber:  "ORD-1001",
		CustomerName: "Acme Handels GmbH",
		Category:     "flyers",
		Date:         now.AddDate(0, 0, -5).Format("2006-01-02"),
		Items: []models.OrderItem{
			{ID: uuid.NewString(), Description: "A5 flyer, 4/4 color", Quantity: 5000, UnitPrice: money("0.04"), LineTotal: money("200")},
		},
		TotalAmount: money("200"),
	})
	addOrder(models.Order{
		OrderNumber:  "ORD-1002",
		CustomerName: "Stadtwerke Beispielstadt",
		Category:     "brochures",
		Date:         now.AddDate(0, 0, -2).Format("2006-01-02"),
		Items: []models.OrderItem{
			{ID: uuid.NewString(), Description: "16-page brochure, saddle stitch", Quantity: 1000, UnitPrice: money("1.20"), LineTotal: money("1200")},
		},
		TotalAmount: money("1200"),
		Payments: []models.Payment{
			{ID: uuid.NewString(), Amount: money("600"), Method: "bank_transfer", PaidAt: now.AddDate(0, 0, -1)},
		},
	})
	s.orderSeq = len(s.orders)
}
