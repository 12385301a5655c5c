package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
	"github.com/emldov7/evMonde--sub000/internal/payments"
)

// In-memory repository fakes shared by the service tests. They keep the
// happy-path semantics of the Postgres implementations: lookups that find
// nothing return (nil, nil), lists return copies.

type memUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = r.nextID
	r.nextID++
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) List(_ context.Context, q *dto.ListUsersQuery) ([]domain.User, int, error) {
	var out []domain.User
	for _, u := range r.users {
		if q != nil && q.Role != "" && u.Role != q.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (r *memUserRepo) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	if u, ok := r.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

type memEventRepo struct {
	nextID int64
	events map[int64]*domain.Event
	tags   map[int64][]int64
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{nextID: 1, events: make(map[int64]*domain.Event), tags: make(map[int64][]int64)}
}

func (r *memEventRepo) Create(_ context.Context, event *domain.Event) error {
	event.ID = r.nextID
	r.nextID++
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memEventRepo) Update(_ context.Context, event *domain.Event) error {
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) Delete(_ context.Context, id int64) error {
	delete(r.events, id)
	return nil
}

func (r *memEventRepo) ListByOrganizer(_ context.Context, organizerID int64, _ *dto.ListEventsQuery) ([]domain.Event, int, error) {
	var out []domain.Event
	for _, e := range r.events {
		if e.OrganizerID == organizerID {
			out = append(out, *e)
		}
	}
	return out, len(out), nil
}

func (r *memEventRepo) ListPublished(_ context.Context, _ *dto.ListEventsQuery) ([]domain.Event, int, error) {
	var out []domain.Event
	for _, e := range r.events {
		if e.Status == domain.EventStatusPublished {
			out = append(out, *e)
		}
	}
	return out, len(out), nil
}

func (r *memEventRepo) ListAll(_ context.Context, _ *dto.ListEventsQuery) ([]domain.Event, int, error) {
	var out []domain.Event
	for _, e := range r.events {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (r *memEventRepo) AdjustAvailableSeats(_ context.Context, id int64, delta int) error {
	if e, ok := r.events[id]; ok {
		e.AvailableSeats += delta
	}
	return nil
}

func (r *memEventRepo) SetTags(_ context.Context, eventID int64, tagIDs []int64) error {
	r.tags[eventID] = append([]int64(nil), tagIDs...)
	return nil
}

type memTicketRepo struct {
	nextID  int64
	tickets map[int64]*domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{nextID: 1, tickets: make(map[int64]*domain.Ticket)}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.nextID
	r.nextID++
	cp := *ticket
	r.tickets[ticket.ID] = &cp
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *memTicketRepo) ListByEvent(_ context.Context, eventID int64) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.tickets {
		if t.EventID == eventID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	cp := *ticket
	r.tickets[ticket.ID] = &cp
	return nil
}

func (r *memTicketRepo) Delete(_ context.Context, id int64) error {
	delete(r.tickets, id)
	return nil
}

func (r *memTicketRepo) IncrementSold(_ context.Context, id int64, delta int) error {
	if t, ok := r.tickets[id]; ok {
		t.QuantitySold += delta
	}
	return nil
}

type memRegistrationRepo struct {
	nextID int64
	regs   map[int64]*domain.Registration
}

func newMemRegistrationRepo() *memRegistrationRepo {
	return &memRegistrationRepo{nextID: 1, regs: make(map[int64]*domain.Registration)}
}

func (r *memRegistrationRepo) Create(_ context.Context, reg *domain.Registration) error {
	reg.ID = r.nextID
	r.nextID++
	cp := *reg
	r.regs[reg.ID] = &cp
	return nil
}

func (r *memRegistrationRepo) GetByID(_ context.Context, id int64) (*domain.Registration, error) {
	reg, ok := r.regs[id]
	if !ok {
		return nil, nil
	}
	cp := *reg
	return &cp, nil
}

func (r *memRegistrationRepo) GetByQRCode(_ context.Context, qrCodeData string) (*domain.Registration, error) {
	for _, reg := range r.regs {
		if reg.QRCodeData == qrCodeData {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRegistrationRepo) GetByStripeSession(_ context.Context, sessionID string) (*domain.Registration, error) {
	for _, reg := range r.regs {
		if reg.StripeSessionID != nil && *reg.StripeSessionID == sessionID {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRegistrationRepo) GetByEventAndUser(_ context.Context, eventID, userID int64) (*domain.Registration, error) {
	for _, reg := range r.regs {
		if reg.EventID == eventID && reg.UserID != nil && *reg.UserID == userID &&
			reg.Status != domain.RegistrationStatusCancelled {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRegistrationRepo) GetByEventAndGuestEmail(_ context.Context, eventID int64, email string) (*domain.Registration, error) {
	for _, reg := range r.regs {
		if reg.EventID == eventID && reg.GuestEmail == strings.ToLower(email) &&
			reg.Status != domain.RegistrationStatusCancelled {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRegistrationRepo) Update(_ context.Context, reg *domain.Registration) error {
	cp := *reg
	r.regs[reg.ID] = &cp
	return nil
}

func (r *memRegistrationRepo) ListByUser(_ context.Context, userID int64) ([]domain.Registration, error) {
	var out []domain.Registration
	for _, reg := range r.regs {
		if reg.UserID != nil && *reg.UserID == userID {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (r *memRegistrationRepo) ListByEvent(_ context.Context, eventID int64) ([]domain.Registration, error) {
	var out []domain.Registration
	for _, reg := range r.regs {
		if reg.EventID == eventID {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (r *memRegistrationRepo) CountConfirmedByEvent(_ context.Context, eventID int64) (int, error) {
	n := 0
	for _, reg := range r.regs {
		if reg.EventID == eventID && reg.Status == domain.RegistrationStatusConfirmed {
			n++
		}
	}
	return n, nil
}

func (r *memRegistrationRepo) OldestWaitlisted(_ context.Context, eventID int64) (*domain.Registration, error) {
	var oldest *domain.Registration
	for _, reg := range r.regs {
		if reg.EventID != eventID || reg.Status != domain.RegistrationStatusWaitlist {
			continue
		}
		if oldest == nil || (reg.WaitlistJoinedAt != nil && oldest.WaitlistJoinedAt != nil &&
			reg.WaitlistJoinedAt.Before(*oldest.WaitlistJoinedAt)) {
			oldest = reg
		}
	}
	if oldest == nil {
		return nil, nil
	}
	cp := *oldest
	return &cp, nil
}

func (r *memRegistrationRepo) RecordScan(_ context.Context, id int64, scannedBy string, at time.Time) error {
	reg, ok := r.regs[id]
	if !ok {
		return nil
	}
	reg.ScannedCount++
	if reg.FirstScanAt == nil {
		reg.FirstScanAt = &at
	}
	reg.LastScanAt = &at
	reg.ScannedBy = &scannedBy
	return nil
}

type memReminderRepo struct {
	nextID    int64
	reminders map[int64]*domain.EventReminder
}

func newMemReminderRepo() *memReminderRepo {
	return &memReminderRepo{nextID: 1, reminders: make(map[int64]*domain.EventReminder)}
}

func (r *memReminderRepo) Create(_ context.Context, reminder *domain.EventReminder) error {
	reminder.ID = r.nextID
	r.nextID++
	cp := *reminder
	r.reminders[reminder.ID] = &cp
	return nil
}

func (r *memReminderRepo) GetByID(_ context.Context, id int64) (*domain.EventReminder, error) {
	rem, ok := r.reminders[id]
	if !ok {
		return nil, nil
	}
	cp := *rem
	return &cp, nil
}

func (r *memReminderRepo) ListByEvent(_ context.Context, eventID int64) ([]domain.EventReminder, error) {
	var out []domain.EventReminder
	for _, rem := range r.reminders {
		if rem.EventID == eventID {
			out = append(out, *rem)
		}
	}
	return out, nil
}

func (r *memReminderRepo) ListDue(_ context.Context, now time.Time, grace time.Duration, limit int) ([]domain.EventReminder, error) {
	var out []domain.EventReminder
	for _, rem := range r.reminders {
		if rem.Sent || rem.ScheduledAt.After(now) || rem.ScheduledAt.Before(now.Add(-grace)) {
			continue
		}
		out = append(out, *rem)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memReminderRepo) MarkSent(_ context.Context, id int64, at time.Time) error {
	rem, ok := r.reminders[id]
	if !ok {
		return nil
	}
	rem.Sent = true
	rem.SentAt = &at
	return nil
}

func (r *memReminderRepo) Update(_ context.Context, reminder *domain.EventReminder) error {
	cp := *reminder
	r.reminders[reminder.ID] = &cp
	return nil
}

func (r *memReminderRepo) Delete(_ context.Context, id int64) error {
	delete(r.reminders, id)
	return nil
}

type memTaxonomyRepo struct {
	categories map[int64]*domain.Category
	tags       map[int64]*domain.Tag
}

func newMemTaxonomyRepo() *memTaxonomyRepo {
	return &memTaxonomyRepo{categories: make(map[int64]*domain.Category), tags: make(map[int64]*domain.Tag)}
}

func (r *memTaxonomyRepo) ListCategories(_ context.Context, _ bool) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memTaxonomyRepo) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memTaxonomyRepo) ListTags(_ context.Context, _ bool) ([]domain.Tag, error) {
	var out []domain.Tag
	for _, t := range r.tags {
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTaxonomyRepo) ListTagsByEvent(_ context.Context, _ int64) ([]domain.Tag, error) {
	return nil, nil
}

type memPayoutRepo struct {
	nextID   int64
	payouts  map[int64]*domain.Payout
	settings *domain.CommissionSettings
	txs      []domain.CommissionTransaction
	balances map[int64]*domain.OrganizerBalance
}

func newMemPayoutRepo() *memPayoutRepo {
	return &memPayoutRepo{
		nextID:   1,
		payouts:  make(map[int64]*domain.Payout),
		balances: make(map[int64]*domain.OrganizerBalance),
	}
}

func (r *memPayoutRepo) Create(_ context.Context, payout *domain.Payout) error {
	payout.ID = r.nextID
	r.nextID++
	cp := *payout
	r.payouts[payout.ID] = &cp
	return nil
}

func (r *memPayoutRepo) GetByID(_ context.Context, id int64) (*domain.Payout, error) {
	p, ok := r.payouts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPayoutRepo) Update(_ context.Context, payout *domain.Payout) error {
	cp := *payout
	r.payouts[payout.ID] = &cp
	return nil
}

func (r *memPayoutRepo) ListByOrganizer(_ context.Context, organizerID int64) ([]domain.Payout, error) {
	var out []domain.Payout
	for _, p := range r.payouts {
		if p.OrganizerID == organizerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPayoutRepo) List(_ context.Context, q *dto.PayoutListQuery) ([]domain.Payout, int, error) {
	var out []domain.Payout
	for _, p := range r.payouts {
		if q != nil && q.Status != "" && p.Status != q.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *memPayoutRepo) GetCommissionSettings(_ context.Context) (*domain.CommissionSettings, error) {
	if r.settings == nil {
		return nil, nil
	}
	cp := *r.settings
	return &cp, nil
}

func (r *memPayoutRepo) UpdateCommissionSettings(_ context.Context, s *domain.CommissionSettings) error {
	cp := *s
	r.settings = &cp
	return nil
}

func (r *memPayoutRepo) CreateCommissionTransaction(_ context.Context, tx *domain.CommissionTransaction) error {
	r.txs = append(r.txs, *tx)
	return nil
}

func (r *memPayoutRepo) OrganizerBalance(_ context.Context, organizerID int64) (*domain.OrganizerBalance, error) {
	if b, ok := r.balances[organizerID]; ok {
		cp := *b
		return &cp, nil
	}
	return &domain.OrganizerBalance{}, nil
}

type memStatsRepo struct {
	stats      dto.PlatformStats
	organizers []dto.TopOrganizer
	events     []dto.TopEvent
}

func (r *memStatsRepo) PlatformStats(_ context.Context) (*dto.PlatformStats, error) {
	cp := r.stats
	return &cp, nil
}

func (r *memStatsRepo) TopOrganizers(_ context.Context, limit int) ([]dto.TopOrganizer, error) {
	if limit > len(r.organizers) {
		limit = len(r.organizers)
	}
	return r.organizers[:limit], nil
}

func (r *memStatsRepo) TopEvents(_ context.Context, limit int) ([]dto.TopEvent, error) {
	if limit > len(r.events) {
		limit = len(r.events)
	}
	return r.events[:limit], nil
}

// fakeGateway records checkout sessions and lets tests flip them to paid
type fakeGateway struct {
	nextID   int
	sessions map[string]*payments.CheckoutSession
	inputs   []*payments.CheckoutInput
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{nextID: 1, sessions: make(map[string]*payments.CheckoutSession)}
}

func (g *fakeGateway) CreateCheckout(_ context.Context, in *payments.CheckoutInput) (*payments.CheckoutSession, error) {
	id := fmt.Sprintf("cs_test_%03d", g.nextID)
	g.nextID++
	session := &payments.CheckoutSession{
		ID:          id,
		URL:         "https://checkout.test/" + id,
		AmountTotal: in.Amount,
		Currency:    in.Currency,
	}
	g.sessions[id] = session
	g.inputs = append(g.inputs, in)
	return session, nil
}

func (g *fakeGateway) GetCheckout(_ context.Context, id string) (*payments.CheckoutSession, error) {
	session, ok := g.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

func (g *fakeGateway) markPaid(id, paymentIntent string) {
	if session, ok := g.sessions[id]; ok {
		session.Paid = true
		session.PaymentIntentID = paymentIntent
	}
}
