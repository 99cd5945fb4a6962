// Package crm manages customers and WhatsApp outreach.
package crm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/service/fallback"
	"github.com/mamadbah2/shroomtrack/pkg/clients/whatsapp"
)

// Customer types and statuses.
const (
	TypeB2B      = "B2B"
	TypeB2C      = "B2C"
	StatusActive = "ACTIVE"
	FilterAll    = "ALL"
)

const minPhoneDigits = 9

var (
	// ErrInvalidPhone is returned when a contact has too few digits to message.
	ErrInvalidPhone = errors.New("invalid phone number for WhatsApp")
	// ErrInvalidCustomerType is returned for a type other than B2B or B2C.
	ErrInvalidCustomerType = errors.New("customer type must be B2B or B2C")
)

// Repository persists customers.
type Repository interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id string) (models.Customer, error)
	SaveCustomer(ctx context.Context, customer models.Customer) error
}

// SalesSource lists sales documents for customer statistics.
type SalesSource interface {
	List(ctx context.Context) ([]models.SalesRecord, error)
}

// OutreachResult describes a WhatsApp message prepared for a customer.
type OutreachResult struct {
	To        string `json:"to"`
	Body      string `json:"body"`
	Link      string `json:"link"`
	Sent      bool   `json:"sent"`
	MessageID string `json:"messageId,omitempty"`
}

// Service is the CRM use-case layer.
type Service struct {
	repo   Repository
	sales  SalesSource
	sender whatsapp.Sender
	cache  *fallback.Snapshot[models.Customer]
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the CRM. A nil sender disables outbound messages.
func NewService(repo Repository, sales SalesSource, sender whatsapp.Sender, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = whatsapp.Disabled{}
	}
	return &Service{
		repo:   repo,
		sales:  sales,
		sender: sender,
		cache:  fallback.NewSnapshot("customers", func(c models.Customer) string { return c.ID }, logger),
		logger: logger,
		now:    time.Now,
	}
}

// List returns every customer, or the last loaded copy when the store fails.
func (s *Service) List(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.cache.Load(ctx, s.repo.ListCustomers)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// Search lists customers whose name contains search, restricted to a type
// unless customerType is empty or ALL.
func (s *Service) Search(ctx context.Context, search, customerType string) ([]models.Customer, error) {
	customers, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(customers, search, customerType), nil
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, id string) (models.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// Add registers a new customer, filling id, type, status and join date.
func (s *Service) Add(ctx context.Context, c models.Customer) (models.Customer, error) {
	now := s.now()
	if c.ID == "" {
		c.ID = fmt.Sprintf("cust-%d", now.UnixMilli())
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		c.Name = "Unknown"
	}
	if c.Type == "" {
		c.Type = TypeB2C
	}
	if c.Type != TypeB2B && c.Type != TypeB2C {
		return models.Customer{}, ErrInvalidCustomerType
	}
	c.Status = StatusActive
	if c.JoinDate == "" {
		c.JoinDate = now.UTC().Format(time.RFC3339)
	}

	if err := s.repo.SaveCustomer(ctx, c); err != nil {
		return models.Customer{}, fmt.Errorf("save customer: %w", err)
	}
	s.cache.Put(c)
	s.logger.Info("customer added", zap.String("customer_id", c.ID), zap.String("type", c.Type))
	return c, nil
}

// Update merges the non-nil fields of patch into a customer.
func (s *Service) Update(ctx context.Context, id string, patch models.CustomerPatch) (models.Customer, error) {
	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return models.Customer{}, err
	}

	if patch.Type != nil && *patch.Type != TypeB2B && *patch.Type != TypeB2C {
		return models.Customer{}, ErrInvalidCustomerType
	}
	apply(&c.Name, patch.Name)
	apply(&c.Contact, patch.Contact)
	apply(&c.Email, patch.Email)
	apply(&c.Address, patch.Address)
	apply(&c.Type, patch.Type)
	apply(&c.Status, patch.Status)
	apply(&c.Notes, patch.Notes)

	if err := s.repo.SaveCustomer(ctx, c); err != nil {
		return models.Customer{}, fmt.Errorf("save customer: %w", err)
	}
	s.cache.Put(c)
	return c, nil
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Stats summarises the purchase history of a customer.
func (s *Service) Stats(ctx context.Context, customerID string) (models.CustomerStats, error) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return models.CustomerStats{}, fmt.Errorf("list sales: %w", err)
	}
	return CustomerStats(sales, customerID), nil
}

// Outreach prepares the template message for a customer and sends it when
// messaging is configured. The wa.me link is returned either way.
func (s *Service) Outreach(ctx context.Context, customerID string, kind models.OutreachKind) (OutreachResult, error) {
	c, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return OutreachResult{}, err
	}

	phone := digits(c.Contact)
	if len(phone) < minPhoneDigits {
		return OutreachResult{}, ErrInvalidPhone
	}
	body := OutreachMessage(kind, c.Name)
	res := OutreachResult{
		To:   phone,
		Body: body,
		Link: fmt.Sprintf("https://wa.me/%s?text=%s", phone, strings.ReplaceAll(url.QueryEscape(body), "+", "%20")),
	}

	id, err := s.sender.SendText(ctx, phone, body)
	switch {
	case errors.Is(err, whatsapp.ErrDisabled):
		return res, nil
	case err != nil:
		s.logger.Error("outreach failed", zap.String("customer_id", customerID), zap.Error(err))
		return res, fmt.Errorf("send outreach: %w", err)
	}

	res.Sent = true
	res.MessageID = id
	s.logger.Info("outreach sent", zap.String("customer_id", customerID), zap.String("kind", string(kind)))
	return res, nil
}

// OutreachMessage renders the PROMO or UPDATE template for name.
func OutreachMessage(kind models.OutreachKind, name string) string {
	if kind == models.OutreachPromo {
		return fmt.Sprintf("Hi %s! We have fresh mushrooms harvested today. Interested?", name)
	}
	return fmt.Sprintf("Hi %s, just checking in on your last order. Everything good?", name)
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// Filter keeps customers whose name contains search (case-insensitive) and
// whose type matches customerType.
func Filter(customers []models.Customer, search, customerType string) []models.Customer {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Customer, 0, len(customers))
	for _, c := range customers {
		if customerType != "" && customerType != FilterAll && c.Type != customerType {
			continue
		}
		if !strings.Contains(strings.ToLower(c.Name), term) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// CustomerStats computes spend and history for one customer; history is
// newest first.
func CustomerStats(sales []models.SalesRecord, customerID string) models.CustomerStats {
	stats := models.CustomerStats{LastOrderDate: "Never", SalesHistory: []models.SalesRecord{}}
	for _, sale := range sales {
		if sale.CustomerID != customerID {
			continue
		}
		stats.TotalSpent += sale.TotalAmount
		stats.SalesHistory = append(stats.SalesHistory, sale)
	}
	stats.OrderCount = len(stats.SalesHistory)

	sort.SliceStable(stats.SalesHistory, func(i, j int) bool {
		return createdAt(stats.SalesHistory[i]).After(createdAt(stats.SalesHistory[j]))
	})
	if stats.OrderCount > 0 {
		stats.LastOrderDate = stats.SalesHistory[0].DateCreated
	}
	return stats
}

// createdAt parses a sale timestamp; unparseable values sort last.
func createdAt(sale models.SalesRecord) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, sale.DateCreated); err == nil {
			return t
		}
	}
	return time.Time{}
}
