package service

import (
	"context"
	"testing"
	"time"

	"studio_portal_backend/internal/events"
	"studio_portal_backend/internal/quotes/repository"
	"studio_portal_backend/internal/quotes/transport"
	"studio_portal_backend/platform/apperr"
	"studio_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// recordingBus captures published events synchronously for assertions.
type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(eventName string, handler events.Handler) {}

type fakeConfig struct{ markup float64 }

func (c fakeConfig) GetDefaultMarkup() float64 { return c.markup }

// fakeStore holds quotes in memory and implements Store.
type fakeStore struct {
	quotes      map[uuid.UUID]*repository.Quote
	items       map[uuid.UUID][]repository.QuoteItem
	conditions  map[uuid.UUID]*repository.CommercialCondition
	publicToken string

	statusWrites      int
	negotiationWrites int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		quotes:      make(map[uuid.UUID]*repository.Quote),
		items:       make(map[uuid.UUID][]repository.QuoteItem),
		conditions:  make(map[uuid.UUID]*repository.CommercialCondition),
		publicToken: "tok-123",
	}
}

func (f *fakeStore) addQuote(tenantID uuid.UUID, status string) *repository.Quote {
	q := &repository.Quote{
		ID:        uuid.New(),
		TenantID:  tenantID,
		PromiseID: uuid.New(),
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.quotes[q.ID] = q
	return q
}

func (f *fakeStore) addItem(quoteID uuid.UUID, unitPrice, cost, expense int64, qty float64) repository.QuoteItem {
	it := repository.QuoteItem{
		ID:             uuid.New(),
		QuoteID:        quoteID,
		Quantity:       qty,
		UnitPriceCents: unitPrice,
		CostCents:      cost,
		ExpenseCents:   expense,
	}
	f.items[quoteID] = append(f.items[quoteID], it)
	return it
}

func (f *fakeStore) GetQuote(ctx context.Context, tenantID, quoteID uuid.UUID) (*repository.Quote, error) {
	q, ok := f.quotes[quoteID]
	if !ok || q.TenantID != tenantID {
		return nil, apperr.NotFound("quote not found")
	}
	copied := *q
	return &copied, nil
}

func (f *fakeStore) GetQuoteByPromiseToken(ctx context.Context, token string, quoteID uuid.UUID) (*repository.Quote, error) {
	if token != f.publicToken {
		return nil, apperr.NotFound("quote not found")
	}
	q, ok := f.quotes[quoteID]
	if !ok {
		return nil, apperr.NotFound("quote not found")
	}
	copied := *q
	return &copied, nil
}

func (f *fakeStore) ListItems(ctx context.Context, tenantID, quoteID uuid.UUID) ([]repository.QuoteItem, error) {
	return f.items[quoteID], nil
}

func (f *fakeStore) GetCommercialCondition(ctx context.Context, tenantID, quoteID uuid.UUID) (*repository.CommercialCondition, error) {
	return f.conditions[quoteID], nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, tenantID, quoteID uuid.UUID, status string) (string, error) {
	q, ok := f.quotes[quoteID]
	if !ok || q.TenantID != tenantID {
		return "", apperr.NotFound("quote not found")
	}
	previous := q.Status
	q.Status = status
	f.statusWrites++
	return previous, nil
}

func (f *fakeStore) ApplyNegotiation(ctx context.Context, tenantID, quoteID uuid.UUID, courtesyItemIDs []uuid.UUID, manualPriceCents *int64, finalPriceCents int64) error {
	q, ok := f.quotes[quoteID]
	if !ok || q.TenantID != tenantID {
		return apperr.NotFound("quote not found")
	}
	courtesy := make(map[uuid.UUID]struct{}, len(courtesyItemIDs))
	for _, id := range courtesyItemIDs {
		courtesy[id] = struct{}{}
	}
	items := f.items[quoteID]
	for i := range items {
		_, isCourtesy := courtesy[items[i].ID]
		items[i].IsCourtesy = isCourtesy
	}
	q.ManualPriceCents = manualPriceCents
	q.FinalPriceCents = finalPriceCents
	f.negotiationWrites++
	return nil
}

func (f *fakeStore) SetSelectionByToken(ctx context.Context, token string, quoteID uuid.UUID, selected bool) (*repository.Quote, error) {
	if token != f.publicToken {
		return nil, apperr.NotFound("quote not found")
	}
	q, ok := f.quotes[quoteID]
	if !ok {
		return nil, apperr.NotFound("quote not found")
	}
	q.SelectedByProspect = &selected
	copied := *q
	return &copied, nil
}

func testService(store *fakeStore, bus *recordingBus) *Service {
	return New(store, bus, fakeConfig{markup: 0.35}, logger.New("test"))
}

func TestApplyNegotiation_PersistsAndMovesToNegotiation(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	tenantID := uuid.New()
	quote := store.addQuote(tenantID, "pending")
	store.addItem(quote.ID, 20000, 8000, 0, 1)
	gift := store.addItem(quote.ID, 5000, 3000, 500, 1)

	svc := testService(store, bus)

	resp, err := svc.ApplyNegotiation(context.Background(), tenantID, uuid.New(), quote.ID, transport.ApplyNegotiationRequest{
		CourtesyItemIDs: []string{gift.ID.String()},
	})
	if err != nil {
		t.Fatalf("ApplyNegotiation: %v", err)
	}

	if store.negotiationWrites != 1 {
		t.Fatalf("expected 1 negotiation write, got %d", store.negotiationWrites)
	}
	if resp.Status != "negotiation" {
		t.Fatalf("expected quote moved to negotiation, got %q", resp.Status)
	}
	if resp.Breakdown.ReferencePriceCents != 20000 {
		t.Fatalf("expected reference 20000 after courtesy, got %d", resp.Breakdown.ReferencePriceCents)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(bus.published))
	}
	evt, ok := bus.published[0].(events.QuoteStatusChanged)
	if !ok {
		t.Fatalf("expected QuoteStatusChanged, got %T", bus.published[0])
	}
	if evt.FromStatus != "pending" || evt.ToStatus != "negotiation" {
		t.Fatalf("unexpected transition %q -> %q", evt.FromStatus, evt.ToStatus)
	}
}

func TestApplyNegotiation_RejectsForeignItem(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	tenantID := uuid.New()
	quote := store.addQuote(tenantID, "pending")
	store.addItem(quote.ID, 10000, 0, 0, 1)

	svc := testService(store, bus)

	_, err := svc.ApplyNegotiation(context.Background(), tenantID, uuid.New(), quote.ID, transport.ApplyNegotiationRequest{
		CourtesyItemIDs: []string{uuid.NewString()},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.negotiationWrites != 0 {
		t.Fatal("expected no write after validation failure")
	}
}

func TestApplyNegotiation_RejectsArchivedQuote(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	tenantID := uuid.New()
	quote := store.addQuote(tenantID, "pending")
	now := time.Now()
	quote.ArchivedAt = &now

	svc := testService(store, bus)

	_, err := svc.ApplyNegotiation(context.Background(), tenantID, uuid.New(), quote.ID, transport.ApplyNegotiationRequest{})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestApplyNegotiation_DoesNotDemoteLaterStatus(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	tenantID := uuid.New()
	quote := store.addQuote(tenantID, "closing")
	store.addItem(quote.ID, 10000, 0, 0, 1)

	svc := testService(store, bus)

	resp, err := svc.ApplyNegotiation(context.Background(), tenantID, uuid.New(), quote.ID, transport.ApplyNegotiationRequest{})
	if err != nil {
		t.Fatalf("ApplyNegotiation: %v", err)
	}
	if resp.Status != "closing" {
		t.Fatalf("expected closing status preserved, got %q", resp.Status)
	}
	if len(bus.published) != 0 {
		t.Fatalf("expected no status event, got %d", len(bus.published))
	}
}

func TestUpdateStatus_NormalizesLegacyAlias(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	tenantID := uuid.New()
	quote := store.addQuote(tenantID, "negotiation")

	svc := testService(store, bus)

	resp, err := svc.UpdateStatus(context.Background(), tenantID, uuid.New(), quote.ID, "cierre")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if resp.Status != "closing" {
		t.Fatalf("expected legacy alias stored as closing, got %q", resp.Status)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(bus.published))
	}
	evt := bus.published[0].(events.QuoteStatusChanged)
	if evt.FromStatus != "negotiation" || evt.ToStatus != "closing" {
		t.Fatalf("unexpected transition %q -> %q", evt.FromStatus, evt.ToStatus)
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	tenantID := uuid.New()
	quote := store.addQuote(tenantID, "pending")

	svc := testService(store, bus)

	_, err := svc.UpdateStatus(context.Background(), tenantID, uuid.New(), quote.ID, "mystery")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.statusWrites != 0 {
		t.Fatal("expected no status write for unknown status")
	}
}

func TestUpdateStatus_NoEventWhenStatusUnchanged(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	tenantID := uuid.New()
	quote := store.addQuote(tenantID, "closing")

	svc := testService(store, bus)

	// "cierre" normalizes to the current status, so no event fires.
	if _, err := svc.UpdateStatus(context.Background(), tenantID, uuid.New(), quote.ID, "cierre"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(bus.published) != 0 {
		t.Fatalf("expected no events, got %d", len(bus.published))
	}
}

func TestSelectByToken_PublishesSelectionChanged(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	tenantID := uuid.New()
	quote := store.addQuote(tenantID, "closing")

	svc := testService(store, bus)

	resp, err := svc.SelectByToken(context.Background(), store.publicToken, quote.ID, true)
	if err != nil {
		t.Fatalf("SelectByToken: %v", err)
	}
	if !resp.Selected {
		t.Fatal("expected selection acknowledged")
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(bus.published))
	}
	evt, ok := bus.published[0].(events.QuoteSelectionChanged)
	if !ok {
		t.Fatalf("expected QuoteSelectionChanged, got %T", bus.published[0])
	}
	if evt.QuoteID != quote.ID || !evt.Selected {
		t.Fatalf("unexpected event payload %+v", evt)
	}
}

func TestSelectByToken_UnknownTokenNotFound(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	quote := store.addQuote(uuid.New(), "closing")

	svc := testService(store, bus)

	_, err := svc.SelectByToken(context.Background(), "wrong-token", quote.ID, true)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(bus.published) != 0 {
		t.Fatal("expected no events on failed selection")
	}
}

func TestGet_NormalizesStoredLegacyStatus(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	tenantID := uuid.New()
	// Rows written before the vocabulary migration may still carry the
	// legacy alias; reads must present the canonical status.
	quote := store.addQuote(tenantID, "cierre")

	svc := testService(store, bus)

	resp, err := svc.Get(context.Background(), tenantID, quote.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.Status != "closing" {
		t.Fatalf("expected stored alias normalized to closing, got %q", resp.Status)
	}
}

func TestGet_IncludesAdvanceAmountFromCondition(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	tenantID := uuid.New()
	quote := store.addQuote(tenantID, "negotiation")
	store.addItem(quote.ID, 100000, 40000, 0, 1)
	store.conditions[quote.ID] = &repository.CommercialCondition{
		QuoteID:      quote.ID,
		AdvanceKind:  "percentage",
		AdvanceValue: 30,
	}

	svc := testService(store, bus)

	resp, err := svc.Get(context.Background(), tenantID, quote.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.CommercialCondition == nil {
		t.Fatal("expected commercial condition in response")
	}
	if resp.CommercialCondition.AdvanceAmountCents != 30000 {
		t.Fatalf("expected advance 30000, got %d", resp.CommercialCondition.AdvanceAmountCents)
	}
}
