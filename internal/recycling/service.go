package recycling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ewaste-marketplace-api-server/internal/models"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// assignRetries bounds how often agent selection is retried after losing a
// schedule version conflict to a concurrent request.
const assignRetries = 3

// Service orchestrates the pickup request workflow: request creation with
// automatic agent assignment, manual re-scheduling, and completion.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

type CreateRequestInput struct {
	ProductIDs     []string
	CollectionDate time.Time
	TimeSlot       string
	PaymentAmount  float64
	Pickup         *models.PickupDetails
}

// ProductSummary is the resolved product view attached to enriched requests.
type ProductSummary struct {
	ProductID string  `json:"productID"`
	Title     string  `json:"title"`
	Category  string  `json:"category"`
	Status    string  `json:"status"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageURL,omitempty"`
}

// RequesterInfo is the requesting user's contact snapshot, resolved on
// single-request lookups.
type RequesterInfo struct {
	UserID  string          `json:"userID"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone,omitempty"`
	Address *models.Address `json:"address,omitempty"`
}

type RequestDetail struct {
	models.RecycleRequest
	Products  []ProductSummary `json:"products"`
	Requester *RequesterInfo   `json:"requester,omitempty"`
}

// CreateRequest validates the products, transitions them to pending_request,
// selects a delivery agent and books the slot, then inserts the request.
//
// Validation of the whole product list happens before any product is
// mutated, so a failing product never leaves earlier ones half-committed.
// The schedule append is a version-guarded update retried with a fresh
// selection on conflict, which keeps two concurrent requests from
// double-booking the same slot.
func (s *Service) CreateRequest(ctx context.Context, userID string, in CreateRequestInput) (*models.RecycleRequest, error) {
	if userID == "" {
		return nil, errors.Wrap(ErrUnauthorized, "no authenticated user")
	}
	if len(in.ProductIDs) == 0 {
		return nil, errors.Wrap(ErrProductUnavailable, "no products in request")
	}

	now := s.now()

	// Phase 1: validate every product before touching any of them.
	for _, pid := range in.ProductIDs {
		product, err := s.store.ProductByID(ctx, pid)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, errors.Wrapf(ErrProductUnavailable, "product %s not found", pid)
			}
			return nil, err
		}
		if product.OwnerUserID != userID {
			return nil, errors.Wrapf(ErrProductUnavailable, "product %s does not belong to the caller", pid)
		}
		if product.Status != models.ProductStatusAvailable {
			return nil, errors.Wrapf(ErrProductUnavailable, "product %s has status %s", pid, product.Status)
		}
	}

	// Phase 2: commit every product to pending_request.
	if err := s.store.SetProductsPending(ctx, in.ProductIDs, now); err != nil {
		return nil, err
	}

	requestID := fmt.Sprintf("RCQ-%s", strings.ToUpper(uuid.New().String()[:8]))
	entry := models.AgentAssignment{
		RequestID:      requestID,
		CollectionDate: in.CollectionDate,
		TimeSlot:       in.TimeSlot,
	}

	agent, err := s.assignAgent(ctx, entry)
	if err != nil {
		s.revertProducts(ctx, in.ProductIDs)
		return nil, err
	}

	newRequest := &models.RecycleRequest{
		RequestID:      requestID,
		UserID:         userID,
		ProductIDs:     in.ProductIDs,
		CollectionDate: in.CollectionDate,
		TimeSlot:       in.TimeSlot,
		PaymentAmount:  in.PaymentAmount,
		PaymentStatus:  models.PaymentStatusPending,
		Status:         models.RequestStatusScheduled,
		DeliveryAgent:  snapshotOf(agent),
		Pickup:         in.Pickup,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.InsertRequest(ctx, newRequest); err != nil {
		// Unwind the booked slot so the agent's schedule does not keep an
		// entry for a request that was never recorded.
		if rmErr := s.store.RemoveAssignment(ctx, agent.AgentID, requestID); rmErr != nil {
			log.Error().Err(rmErr).
				Str("agentID", agent.AgentID).
				Str("requestID", requestID).
				Msg("Failed to unwind agent assignment after request insert failure. Please check manually.")
		}
		s.revertProducts(ctx, in.ProductIDs)
		return nil, err
	}

	return newRequest, nil
}

// assignAgent lists the registry, picks an agent (first free slot, else
// least busy) and books the entry. Lost version conflicts trigger a fresh
// selection. An empty registry bootstraps one default agent.
func (s *Service) assignAgent(ctx context.Context, entry models.AgentAssignment) (*models.DeliveryAgent, error) {
	for attempt := 0; attempt < assignRetries; attempt++ {
		agents, err := s.store.ListAgents(ctx)
		if err != nil {
			return nil, err
		}

		if len(agents) == 0 {
			bootstrap := defaultAgent(s.now())
			if err := s.store.InsertAgent(ctx, bootstrap); err != nil {
				return nil, errors.Wrap(ErrAssignmentImpossible, err.Error())
			}
			agents = []models.DeliveryAgent{*bootstrap}
		}

		picked := pickAgent(agents, entry.CollectionDate, entry.TimeSlot)

		ok, err := s.store.AppendAssignment(ctx, picked.AgentID, picked.ScheduleVersion, entry)
		if err != nil {
			return nil, err
		}
		if ok {
			picked.AssignedRequests = append(picked.AssignedRequests, entry)
			return &picked, nil
		}

		log.Warn().
			Str("agentID", picked.AgentID).
			Str("requestID", entry.RequestID).
			Int("attempt", attempt+1).
			Msg("Agent schedule changed during assignment, reselecting")
	}

	return nil, errors.Wrapf(ErrAssignmentImpossible, "gave up after %d attempts", assignRetries)
}

// ScheduleRequest re-assigns a request to an explicitly chosen agent. The
// previous agent's schedule entry is removed and the new agent's schedule
// gains one, keeping both schedules consistent with the request.
func (s *Service) ScheduleRequest(ctx context.Context, requestID, agentID string) (*models.RecycleRequest, error) {
	req, err := s.store.RequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status == models.RequestStatusCompleted || req.Status == models.RequestStatusCancelled {
		return nil, errors.Wrapf(ErrAlreadyCompleted, "request %s is %s", requestID, req.Status)
	}

	agent, err := s.store.AgentByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if req.DeliveryAgent != nil {
		if err := s.store.RemoveAssignment(ctx, req.DeliveryAgent.AgentID, requestID); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			log.Warn().
				Str("agentID", req.DeliveryAgent.AgentID).
				Str("requestID", requestID).
				Msg("Previous agent missing while re-scheduling, continuing")
		}
	}

	entry := models.AgentAssignment{
		RequestID:      requestID,
		CollectionDate: req.CollectionDate,
		TimeSlot:       req.TimeSlot,
	}
	booked := false
	for attempt := 0; attempt < assignRetries; attempt++ {
		ok, err := s.store.AppendAssignment(ctx, agent.AgentID, agent.ScheduleVersion, entry)
		if err != nil {
			return nil, err
		}
		if ok {
			booked = true
			break
		}
		if agent, err = s.store.AgentByID(ctx, agentID); err != nil {
			return nil, err
		}
	}
	if !booked {
		return nil, errors.Wrapf(ErrAssignmentImpossible, "agent %s schedule kept changing", agentID)
	}

	patch := RequestPatch{
		Status:        models.RequestStatusScheduled,
		DeliveryAgent: snapshotOf(agent),
		UpdatedAt:     s.now(),
	}
	if err := s.store.PatchRequest(ctx, requestID, patch); err != nil {
		return nil, err
	}

	req.Status = patch.Status
	req.DeliveryAgent = patch.DeliveryAgent
	req.UpdatedAt = patch.UpdatedAt
	return req, nil
}

// CompleteRequest marks the request completed, flips every referenced
// product to recycled, and frees the assigned agent's slot. Completing a
// request that is already terminal fails, products are never
// double-processed.
func (s *Service) CompleteRequest(ctx context.Context, callerID, callerRole, requestID, paymentStatus string) (*models.RecycleRequest, error) {
	req, err := s.store.RequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if callerRole != "admin" && req.UserID != callerID {
		return nil, errors.Wrapf(ErrUnauthorized, "request %s does not belong to the caller", requestID)
	}
	if req.Status == models.RequestStatusCompleted || req.Status == models.RequestStatusCancelled {
		return nil, errors.Wrapf(ErrAlreadyCompleted, "request %s is %s", requestID, req.Status)
	}

	now := s.now()
	patch := RequestPatch{
		Status:        models.RequestStatusCompleted,
		PaymentStatus: paymentStatus,
		UpdatedAt:     now,
	}
	if err := s.store.PatchRequest(ctx, requestID, patch); err != nil {
		return nil, err
	}

	if err := s.store.SetProductsRecycled(ctx, req.ProductIDs, req.UserID, now); err != nil {
		return nil, err
	}

	if req.DeliveryAgent != nil {
		if err := s.store.RemoveAssignment(ctx, req.DeliveryAgent.AgentID, requestID); err != nil {
			// A missing agent is tolerated, the request is still completed.
			log.Warn().Err(err).
				Str("agentID", req.DeliveryAgent.AgentID).
				Str("requestID", requestID).
				Msg("Could not remove completed request from agent schedule")
		}
	}

	req.Status = patch.Status
	req.PaymentStatus = paymentStatus
	req.UpdatedAt = now
	return req, nil
}

// RequestByID returns one request enriched with resolved product summaries
// and the requester's contact snapshot. Only the requester (or an admin) may
// read it.
func (s *Service) RequestByID(ctx context.Context, callerID, callerRole, requestID string) (*RequestDetail, error) {
	req, err := s.store.RequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if callerRole != "admin" && req.UserID != callerID {
		return nil, errors.Wrapf(ErrUnauthorized, "request %s does not belong to the caller", requestID)
	}

	detail := &RequestDetail{
		RecycleRequest: *req,
		Products:       s.productSummaries(ctx, req.ProductIDs),
	}

	user, err := s.store.UserByID(ctx, req.UserID)
	if err == nil {
		detail.Requester = &RequesterInfo{
			UserID:  user.UserID,
			Name:    user.Name,
			Email:   user.Email,
			Phone:   user.Phone,
			Address: user.Address,
		}
	}

	return detail, nil
}

// RequestsForUser lists the caller's requests, newest first, with product
// summaries resolved.
func (s *Service) RequestsForUser(ctx context.Context, userID string) ([]RequestDetail, error) {
	reqs, err := s.store.RequestsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]RequestDetail, 0, len(reqs))
	for _, r := range reqs {
		details = append(details, RequestDetail{
			RecycleRequest: r,
			Products:       s.productSummaries(ctx, r.ProductIDs),
		})
	}
	return details, nil
}

// CompletedItemCount sums the product slots across the user's completed
// requests.
func (s *Service) CompletedItemCount(ctx context.Context, userID string) (int, error) {
	reqs, err := s.store.RequestsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range reqs {
		if r.Status == models.RequestStatusCompleted {
			count += len(r.ProductIDs)
		}
	}
	return count, nil
}

func (s *Service) productSummaries(ctx context.Context, productIDs []string) []ProductSummary {
	summaries := make([]ProductSummary, 0, len(productIDs))
	for _, pid := range productIDs {
		product, err := s.store.ProductByID(ctx, pid)
		if err != nil {
			log.Warn().Err(err).Str("productID", pid).Msg("Could not resolve product for request view")
			summaries = append(summaries, ProductSummary{ProductID: pid})
			continue
		}
		summary := ProductSummary{
			ProductID: product.ProductID,
			Title:     product.Title,
			Category:  product.Category,
			Status:    product.Status,
			Price:     product.Price,
		}
		if len(product.Images) > 0 {
			summary.ImageURL = product.Images[0].URL
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// revertProducts puts products back to available after a failed creation so
// they are not stranded in pending_request with no owning request.
func (s *Service) revertProducts(ctx context.Context, productIDs []string) {
	if err := s.store.SetProductsAvailable(ctx, productIDs, s.now()); err != nil {
		log.Error().Err(err).
			Strs("productIDs", productIDs).
			Msg("Failed to revert products after request creation failure. Please check manually.")
	}
}

func snapshotOf(agent *models.DeliveryAgent) *models.AgentSnapshot {
	return &models.AgentSnapshot{
		AgentID: agent.AgentID,
		Name:    agent.Name,
		Phone:   agent.Phone,
		Vehicle: agent.Vehicle,
	}
}
