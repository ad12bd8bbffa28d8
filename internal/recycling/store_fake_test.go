package recycling

import (
	"context"
	"time"

	"ewaste-marketplace-api-server/internal/models"

	"github.com/cockroachdb/errors"
)

// fakeStore is an in-memory Store used by the workflow tests. Agents keep
// insertion order so selection is deterministic, matching the registry's
// creation-order listing.
type fakeStore struct {
	products map[string]*models.Product
	agents   []*models.DeliveryAgent
	requests map[string]*models.RecycleRequest
	users    map[string]*models.User

	// appendConflicts makes the next N AppendAssignment calls lose the
	// version race, simulating a concurrent writer.
	appendConflicts int
	appendCalls     int
	insertReqErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[string]*models.Product{},
		requests: map[string]*models.RecycleRequest{},
		users:    map[string]*models.User{},
	}
}

func (f *fakeStore) ProductByID(_ context.Context, productID string) (*models.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "product %s", productID)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStore) SetProductsPending(_ context.Context, productIDs []string, at time.Time) error {
	for _, pid := range productIDs {
		if p, ok := f.products[pid]; ok {
			p.Status = models.ProductStatusPendingRequest
			p.UpdatedAt = at
		}
	}
	return nil
}

func (f *fakeStore) SetProductsAvailable(_ context.Context, productIDs []string, at time.Time) error {
	for _, pid := range productIDs {
		if p, ok := f.products[pid]; ok {
			p.Status = models.ProductStatusAvailable
			p.UpdatedAt = at
		}
	}
	return nil
}

func (f *fakeStore) SetProductsRecycled(_ context.Context, productIDs []string, recyclerUserID string, at time.Time) error {
	for _, pid := range productIDs {
		if p, ok := f.products[pid]; ok {
			p.Status = models.ProductStatusRecycled
			p.RecycledByUserID = recyclerUserID
			recycled := at
			p.RecycledDate = &recycled
			p.UpdatedAt = at
		}
	}
	return nil
}

func (f *fakeStore) ListAgents(_ context.Context) ([]models.DeliveryAgent, error) {
	out := make([]models.DeliveryAgent, 0, len(f.agents))
	for _, a := range f.agents {
		copied := *a
		copied.AssignedRequests = append([]models.AgentAssignment(nil), a.AssignedRequests...)
		out = append(out, copied)
	}
	return out, nil
}

func (f *fakeStore) AgentByID(_ context.Context, agentID string) (*models.DeliveryAgent, error) {
	for _, a := range f.agents {
		if a.AgentID == agentID {
			copied := *a
			copied.AssignedRequests = append([]models.AgentAssignment(nil), a.AssignedRequests...)
			return &copied, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "agent %s", agentID)
}

func (f *fakeStore) InsertAgent(_ context.Context, agent *models.DeliveryAgent) error {
	copied := *agent
	f.agents = append(f.agents, &copied)
	return nil
}

func (f *fakeStore) AppendAssignment(_ context.Context, agentID string, version int64, entry models.AgentAssignment) (bool, error) {
	f.appendCalls++

	var agent *models.DeliveryAgent
	for _, a := range f.agents {
		if a.AgentID == agentID {
			agent = a
			break
		}
	}
	if agent == nil {
		return false, nil
	}

	for _, e := range agent.AssignedRequests {
		if e.RequestID == entry.RequestID {
			return true, nil
		}
	}

	if f.appendConflicts > 0 {
		f.appendConflicts--
		agent.ScheduleVersion++
		return false, nil
	}
	if agent.ScheduleVersion != version {
		return false, nil
	}

	agent.AssignedRequests = append(agent.AssignedRequests, entry)
	agent.ScheduleVersion++
	return true, nil
}

func (f *fakeStore) RemoveAssignment(_ context.Context, agentID, requestID string) error {
	for _, a := range f.agents {
		if a.AgentID != agentID {
			continue
		}
		kept := a.AssignedRequests[:0]
		for _, e := range a.AssignedRequests {
			if e.RequestID != requestID {
				kept = append(kept, e)
			}
		}
		a.AssignedRequests = kept
		a.ScheduleVersion++
		return nil
	}
	return errors.Wrapf(ErrNotFound, "agent %s", agentID)
}

func (f *fakeStore) InsertRequest(_ context.Context, req *models.RecycleRequest) error {
	if f.insertReqErr != nil {
		return f.insertReqErr
	}
	copied := *req
	f.requests[req.RequestID] = &copied
	return nil
}

func (f *fakeStore) RequestByID(_ context.Context, requestID string) (*models.RecycleRequest, error) {
	r, ok := f.requests[requestID]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "request %s", requestID)
	}
	copied := *r
	return &copied, nil
}

func (f *fakeStore) RequestsByUser(_ context.Context, userID string) ([]models.RecycleRequest, error) {
	var out []models.RecycleRequest
	for _, r := range f.requests {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) PatchRequest(_ context.Context, requestID string, patch RequestPatch) error {
	r, ok := f.requests[requestID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "request %s", requestID)
	}
	if patch.Status != "" {
		r.Status = patch.Status
	}
	if patch.PaymentStatus != "" {
		r.PaymentStatus = patch.PaymentStatus
	}
	if patch.DeliveryAgent != nil {
		r.DeliveryAgent = patch.DeliveryAgent
	}
	r.UpdatedAt = patch.UpdatedAt
	return nil
}

func (f *fakeStore) UserByID(_ context.Context, userID string) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "user %s", userID)
	}
	copied := *u
	return &copied, nil
}
