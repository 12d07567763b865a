// Package service provides business logic for quotes: negotiation breakdowns,
// status transitions and prospect selection.
package service

import (
	"context"
	"fmt"

	"studio_portal_backend/internal/events"
	"studio_portal_backend/internal/promises/domain"
	quotesdomain "studio_portal_backend/internal/quotes/domain"
	"studio_portal_backend/internal/quotes/repository"
	"studio_portal_backend/internal/quotes/transport"
	"studio_portal_backend/internal/scheduler"
	"studio_portal_backend/platform/apperr"
	"studio_portal_backend/platform/config"
	"studio_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs. Implemented by
// *repository.Repository; narrowed so tests can fake it.
type Store interface {
	GetQuote(ctx context.Context, tenantID, quoteID uuid.UUID) (*repository.Quote, error)
	GetQuoteByPromiseToken(ctx context.Context, token string, quoteID uuid.UUID) (*repository.Quote, error)
	ListItems(ctx context.Context, tenantID, quoteID uuid.UUID) ([]repository.QuoteItem, error)
	GetCommercialCondition(ctx context.Context, tenantID, quoteID uuid.UUID) (*repository.CommercialCondition, error)
	UpdateStatus(ctx context.Context, tenantID, quoteID uuid.UUID, status string) (string, error)
	ApplyNegotiation(ctx context.Context, tenantID, quoteID uuid.UUID, courtesyItemIDs []uuid.UUID, manualPriceCents *int64, finalPriceCents int64) error
	SetSelectionByToken(ctx context.Context, token string, quoteID uuid.UUID, selected bool) (*repository.Quote, error)
}

// Service provides business logic for quotes.
type Service struct {
	store Store
	bus   events.Bus
	cfg   config.NegotiationConfig
	sched scheduler.PipelineSyncScheduler // optional — nil means event path only
	log   *logger.Logger
}

// New creates a new quotes service.
func New(store Store, bus events.Bus, cfg config.NegotiationConfig, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, cfg: cfg, log: log}
}

// SetPipelineScheduler injects the durable sync backstop. Set after
// construction when redis is configured.
func (s *Service) SetPipelineScheduler(sched scheduler.PipelineSyncScheduler) {
	s.sched = sched
}

// Get returns a quote with its items and current negotiation breakdown.
func (s *Service) Get(ctx context.Context, tenantID, quoteID uuid.UUID) (*transport.QuoteResponse, error) {
	quote, err := s.store.GetQuote(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx, tenantID, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list quote items: %w", err)
	}
	condition, err := s.store.GetCommercialCondition(ctx, tenantID, quoteID)
	if err != nil {
		return nil, fmt.Errorf("get commercial condition: %w", err)
	}
	return s.toResponse(quote, items, condition), nil
}

// PreviewNegotiation computes a breakdown from the request without touching
// stored state.
func (s *Service) PreviewNegotiation(req transport.NegotiationPreviewRequest) transport.NegotiationBreakdown {
	markup := s.cfg.GetDefaultMarkup()
	if req.Markup != nil {
		markup = *req.Markup
	}
	return ComputeBreakdown(req.Items, req.CourtesyItemIDs, req.ManualPriceCents, markup)
}

// ApplyNegotiation persists the courtesy selection and manual price, moves the
// quote into negotiation and publishes the status change.
func (s *Service) ApplyNegotiation(ctx context.Context, tenantID, actorID, quoteID uuid.UUID, req transport.ApplyNegotiationRequest) (*transport.QuoteResponse, error) {
	quote, err := s.store.GetQuote(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.ArchivedAt != nil {
		return nil, apperr.Conflict("cannot negotiate an archived quote")
	}

	items, err := s.store.ListItems(ctx, tenantID, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list quote items: %w", err)
	}

	courtesyIDs, err := resolveCourtesyIDs(items, req.CourtesyItemIDs)
	if err != nil {
		return nil, err
	}

	breakdown := ComputeBreakdown(itemsToNegotiation(items), req.CourtesyItemIDs, req.ManualPriceCents, s.cfg.GetDefaultMarkup())

	if err := s.store.ApplyNegotiation(ctx, tenantID, quoteID, courtesyIDs, req.ManualPriceCents, breakdown.FinalPriceCents); err != nil {
		return nil, err
	}

	// Negotiating a quote pulls it into the negotiation status unless a
	// later stage already holds it.
	from := domain.NormalizeStatus(quote.Status)
	if from == domain.StatusPending {
		previous, err := s.store.UpdateStatus(ctx, tenantID, quoteID, string(domain.StatusNegotiation))
		if err != nil {
			return nil, err
		}
		s.publishStatusChanged(ctx, quote, previous, string(domain.StatusNegotiation), &actorID)
	}

	return s.Get(ctx, tenantID, quoteID)
}

// UpdateStatus normalizes and validates the requested status, persists it and
// publishes QuoteStatusChanged. No-op transitions (same normalized status)
// skip the event.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, actorID, quoteID uuid.UUID, rawStatus string) (*transport.QuoteResponse, error) {
	normalized := domain.NormalizeStatus(rawStatus)
	if !domain.IsKnownStatus(normalized) {
		return nil, apperr.Validation(fmt.Sprintf("unknown quote status %q", rawStatus))
	}

	quote, err := s.store.GetQuote(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.ArchivedAt != nil {
		return nil, apperr.Conflict("cannot change status of an archived quote")
	}

	previous, err := s.store.UpdateStatus(ctx, tenantID, quoteID, string(normalized))
	if err != nil {
		return nil, err
	}

	if domain.NormalizeStatus(previous) != normalized {
		s.publishStatusChanged(ctx, quote, previous, string(normalized), &actorID)
	}

	return s.Get(ctx, tenantID, quoteID)
}

// SelectByToken records a prospect's selection through the public portal and
// publishes QuoteSelectionChanged.
func (s *Service) SelectByToken(ctx context.Context, token string, quoteID uuid.UUID, selected bool) (*transport.SelectQuoteResponse, error) {
	quote, err := s.store.SetSelectionByToken(ctx, token, quoteID, selected)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.QuoteSelectionChanged{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  quote.TenantID,
		PromiseID: quote.PromiseID,
		QuoteID:   quote.ID,
		Selected:  selected,
	})
	s.enqueueSync(ctx, quote.TenantID, quote.PromiseID, nil)

	return &transport.SelectQuoteResponse{QuoteID: quote.ID, Selected: selected}, nil
}

func (s *Service) publishStatusChanged(ctx context.Context, quote *repository.Quote, from, to string, actorID *uuid.UUID) {
	s.bus.Publish(ctx, events.QuoteStatusChanged{
		BaseEvent:  events.NewBaseEvent(),
		TenantID:   quote.TenantID,
		PromiseID:  quote.PromiseID,
		QuoteID:    quote.ID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
	})
	s.enqueueSync(ctx, quote.TenantID, quote.PromiseID, actorID)
}

// enqueueSync schedules a durable re-derivation of the owning promise's
// pipeline stage. Best-effort: the in-process event path already ran, the
// task only guards against a crash before the stage write landed.
func (s *Service) enqueueSync(ctx context.Context, tenantID, promiseID uuid.UUID, actorID *uuid.UUID) {
	if s.sched == nil {
		return
	}
	payload := scheduler.PipelineSyncPayload{
		TenantID:  tenantID.String(),
		PromiseID: promiseID.String(),
	}
	if actorID != nil {
		a := actorID.String()
		payload.ActorID = &a
	}
	if err := s.sched.SchedulePipelineSync(ctx, payload); err != nil {
		s.log.Warn("failed to enqueue pipeline sync", "error", err, "promise_id", promiseID.String())
	}
}

// resolveCourtesyIDs parses and validates that every requested courtesy item
// belongs to the quote.
func resolveCourtesyIDs(items []repository.QuoteItem, requested []string) ([]uuid.UUID, error) {
	known := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		known[it.ID] = struct{}{}
	}

	ids := make([]uuid.UUID, 0, len(requested))
	for _, raw := range requested {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("invalid courtesy item id %q", raw))
		}
		if _, ok := known[id]; !ok {
			return nil, apperr.Validation(fmt.Sprintf("item %s does not belong to this quote", id))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// itemsToNegotiation maps stored items to calculator inputs. Courtesy
// membership travels separately as an ID set, so stored flags are not copied.
func itemsToNegotiation(items []repository.QuoteItem) []transport.NegotiationItem {
	out := make([]transport.NegotiationItem, 0, len(items))
	for _, it := range items {
		out = append(out, transport.NegotiationItem{
			ID:             it.ID.String(),
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			CostCents:      it.CostCents,
			ExpenseCents:   it.ExpenseCents,
		})
	}
	return out
}

func (s *Service) toResponse(quote *repository.Quote, items []repository.QuoteItem, condition *repository.CommercialCondition) *transport.QuoteResponse {
	itemResponses := make([]transport.QuoteItemResponse, 0, len(items))
	negotiationItems := make([]transport.NegotiationItem, 0, len(items))
	courtesyIDs := make([]string, 0)
	for _, it := range items {
		itemResponses = append(itemResponses, transport.QuoteItemResponse{
			ID:             it.ID,
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			CostCents:      it.CostCents,
			ExpenseCents:   it.ExpenseCents,
			IsCourtesy:     it.IsCourtesy,
		})
		negotiationItems = append(negotiationItems, transport.NegotiationItem{
			ID:             it.ID.String(),
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			CostCents:      it.CostCents,
			ExpenseCents:   it.ExpenseCents,
		})
		if it.IsCourtesy {
			courtesyIDs = append(courtesyIDs, it.ID.String())
		}
	}

	breakdown := ComputeBreakdown(negotiationItems, courtesyIDs, quote.ManualPriceCents, s.cfg.GetDefaultMarkup())

	resp := &transport.QuoteResponse{
		ID:                 quote.ID,
		PromiseID:          quote.PromiseID,
		Status:             string(domain.NormalizeStatus(quote.Status)),
		SelectedByProspect: quote.SelectedByProspect,
		ManualPriceCents:   quote.ManualPriceCents,
		Items:              itemResponses,
		Breakdown:          breakdown,
		CreatedAt:          quote.CreatedAt,
		UpdatedAt:          quote.UpdatedAt,
	}

	if condition != nil {
		cond := quotesdomain.CommercialCondition{
			DiscountPercent: condition.DiscountPercent,
			AdvanceKind:     condition.AdvanceKind,
			AdvanceValue:    condition.AdvanceValue,
		}
		resp.CommercialCondition = &transport.CommercialConditionResponse{
			DiscountPercent:    condition.DiscountPercent,
			AdvanceKind:        condition.AdvanceKind,
			AdvanceValue:       condition.AdvanceValue,
			AdvanceAmountCents: cond.AdvanceAmount(breakdown.FinalPriceCents),
		}
	}

	return resp
}
