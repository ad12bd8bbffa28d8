package recycling

import (
	"context"
	"testing"
	"time"

	"ewaste-marketplace-api-server/internal/models"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore) *Service {
	svc := NewService(store)
	svc.now = func() time.Time { return testNow }
	return svc
}

func availableProduct(productID, ownerID string) *models.Product {
	return &models.Product{
		ProductID:   productID,
		OwnerUserID: ownerID,
		Title:       "Old Laptop",
		Category:    "LAPTOP",
		Status:      models.ProductStatusAvailable,
	}
}

func createInput(productIDs ...string) CreateRequestInput {
	return CreateRequestInput{
		ProductIDs:     productIDs,
		CollectionDate: day,
		TimeSlot:       models.TimeSlotMorning,
		PaymentAmount:  100,
	}
}

func TestCreateRequestBootstrapsDefaultAgent(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	svc := newTestService(store)

	req, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.NoError(t, err)

	// Exactly one agent was created and holds the booking.
	require.Len(t, store.agents, 1)
	agent := store.agents[0]
	require.Len(t, agent.AssignedRequests, 1)
	assert.Equal(t, req.RequestID, agent.AssignedRequests[0].RequestID)
	assert.True(t, agent.AssignedRequests[0].CollectionDate.Equal(day))
	assert.Equal(t, models.TimeSlotMorning, agent.AssignedRequests[0].TimeSlot)

	assert.Equal(t, models.ProductStatusPendingRequest, store.products["P1"].Status)

	assert.Equal(t, models.RequestStatusScheduled, req.Status)
	assert.Equal(t, models.PaymentStatusPending, req.PaymentStatus)
	require.NotNil(t, req.DeliveryAgent)
	assert.Equal(t, agent.AgentID, req.DeliveryAgent.AgentID)
}

func TestCreateRequestPrefersFreeAgent(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	busy := agentWith("A1", models.AgentAssignment{RequestID: "RCQ-0", CollectionDate: day, TimeSlot: models.TimeSlotMorning})
	free := agentWith("A2")
	store.agents = []*models.DeliveryAgent{&busy, &free}
	svc := newTestService(store)

	req, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.NoError(t, err)

	assert.Equal(t, "A2", req.DeliveryAgent.AgentID)
	assert.Len(t, busy.AssignedRequests, 1, "busy agent untouched")
	assert.Len(t, free.AssignedRequests, 1)
}

func TestCreateRequestRejectsForeignProduct(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "someone-else")
	svc := newTestService(store)

	_, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.ErrorIs(t, err, ErrProductUnavailable)

	assert.Equal(t, models.ProductStatusAvailable, store.products["P1"].Status, "rejected product must be unchanged")
	assert.Empty(t, store.requests)
}

func TestCreateRequestValidatesAllBeforeMutatingAny(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	taken := availableProduct("P2", "U1")
	taken.Status = models.ProductStatusPendingRequest
	store.products["P2"] = taken
	svc := newTestService(store)

	_, err := svc.CreateRequest(context.Background(), "U1", createInput("P1", "P2"))
	require.ErrorIs(t, err, ErrProductUnavailable)

	// P1 passed validation but must not have been committed.
	assert.Equal(t, models.ProductStatusAvailable, store.products["P1"].Status)
	assert.Empty(t, store.agents)
	assert.Empty(t, store.requests)
}

func TestCreateRequestSecondRequestForSameProductFails(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	store.products["P2"] = availableProduct("P2", "U1")
	svc := newTestService(store)

	_, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.NoError(t, err)

	_, err = svc.CreateRequest(context.Background(), "U1", createInput("P2", "P1"))
	require.ErrorIs(t, err, ErrProductUnavailable)
	assert.Equal(t, models.ProductStatusAvailable, store.products["P2"].Status, "other product in the failed request must be untouched")
}

func TestCreateRequestRetriesAfterScheduleConflict(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	agent := agentWith("A1")
	store.agents = []*models.DeliveryAgent{&agent}
	store.appendConflicts = 1
	svc := newTestService(store)

	req, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.NoError(t, err)

	assert.Equal(t, 2, store.appendCalls, "one lost race plus one successful retry")
	assert.Equal(t, "A1", req.DeliveryAgent.AgentID)
	assert.Len(t, agent.AssignedRequests, 1)
}

func TestCreateRequestGivesUpAfterRepeatedConflicts(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	agent := agentWith("A1")
	store.agents = []*models.DeliveryAgent{&agent}
	store.appendConflicts = assignRetries
	svc := newTestService(store)

	_, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.ErrorIs(t, err, ErrAssignmentImpossible)

	assert.Equal(t, models.ProductStatusAvailable, store.products["P1"].Status, "products are reverted when assignment fails")
	assert.Empty(t, store.requests)
}

func TestCreateRequestUnwindsAssignmentOnInsertFailure(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	agent := agentWith("A1")
	store.agents = []*models.DeliveryAgent{&agent}
	store.insertReqErr = errors.New("write failed")
	svc := newTestService(store)

	_, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.Error(t, err)

	assert.Empty(t, agent.AssignedRequests, "booked slot must be released")
	assert.Equal(t, models.ProductStatusAvailable, store.products["P1"].Status)
}

func TestCompleteRequest(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	store.products["P2"] = availableProduct("P2", "U1")
	svc := newTestService(store)

	created, err := svc.CreateRequest(context.Background(), "U1", createInput("P1", "P2"))
	require.NoError(t, err)

	completed, err := svc.CompleteRequest(context.Background(), "U1", "user", created.RequestID, models.PaymentStatusPaid)
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusCompleted, completed.Status)
	assert.Equal(t, models.PaymentStatusPaid, completed.PaymentStatus)

	for _, pid := range []string{"P1", "P2"} {
		p := store.products[pid]
		assert.Equal(t, models.ProductStatusRecycled, p.Status)
		assert.Equal(t, "U1", p.RecycledByUserID)
		require.NotNil(t, p.RecycledDate)
		assert.True(t, p.RecycledDate.Equal(testNow), "both products share the completion timestamp")
	}

	require.Len(t, store.agents, 1)
	assert.Empty(t, store.agents[0].AssignedRequests, "completed request is removed from the agent schedule")
}

func TestCompleteRequestIsGuardedAgainstReprocessing(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	svc := newTestService(store)

	created, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.NoError(t, err)

	_, err = svc.CompleteRequest(context.Background(), "U1", "user", created.RequestID, models.PaymentStatusPaid)
	require.NoError(t, err)
	firstRecycledDate := *store.products["P1"].RecycledDate

	_, err = svc.CompleteRequest(context.Background(), "U1", "user", created.RequestID, models.PaymentStatusNotApplicable)
	require.ErrorIs(t, err, ErrAlreadyCompleted)

	assert.True(t, store.products["P1"].RecycledDate.Equal(firstRecycledDate))
	assert.Equal(t, models.PaymentStatusPaid, store.requests[created.RequestID].PaymentStatus)
}

func TestCompleteRequestRejectsForeignCaller(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	svc := newTestService(store)

	created, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.NoError(t, err)

	_, err = svc.CompleteRequest(context.Background(), "U2", "user", created.RequestID, models.PaymentStatusPaid)
	require.ErrorIs(t, err, ErrUnauthorized)

	// An admin may complete on the user's behalf.
	_, err = svc.CompleteRequest(context.Background(), "U2", "admin", created.RequestID, models.PaymentStatusPaid)
	require.NoError(t, err)
}

func TestCompleteRequestToleratesMissingAgent(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	svc := newTestService(store)

	created, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.NoError(t, err)

	// The assigned agent disappears before completion.
	store.agents = nil

	completed, err := svc.CompleteRequest(context.Background(), "U1", "user", created.RequestID, models.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, completed.Status)
	assert.Equal(t, models.ProductStatusRecycled, store.products["P1"].Status)
}

func TestScheduleRequestMovesAssignmentBetweenAgents(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	first := agentWith("A1")
	second := agentWith("A2")
	store.agents = []*models.DeliveryAgent{&first, &second}
	svc := newTestService(store)

	created, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.NoError(t, err)
	require.Equal(t, "A1", created.DeliveryAgent.AgentID)

	updated, err := svc.ScheduleRequest(context.Background(), created.RequestID, "A2")
	require.NoError(t, err)

	assert.Equal(t, "A2", updated.DeliveryAgent.AgentID)
	assert.Equal(t, models.RequestStatusScheduled, updated.Status)

	assert.Empty(t, first.AssignedRequests, "old agent schedule loses the entry")
	require.Len(t, second.AssignedRequests, 1)
	assert.Equal(t, created.RequestID, second.AssignedRequests[0].RequestID)
	assert.True(t, second.AssignedRequests[0].CollectionDate.Equal(day))
}

func TestScheduleRequestNotFound(t *testing.T) {
	store := newFakeStore()
	agent := agentWith("A1")
	store.agents = []*models.DeliveryAgent{&agent}
	svc := newTestService(store)

	_, err := svc.ScheduleRequest(context.Background(), "RCQ-MISSING", "A1")
	require.ErrorIs(t, err, ErrNotFound)

	store.products["P1"] = availableProduct("P1", "U1")
	created, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.NoError(t, err)

	_, err = svc.ScheduleRequest(context.Background(), created.RequestID, "AGT-MISSING")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRequestByIDEnforcesOwnership(t *testing.T) {
	store := newFakeStore()
	store.products["P1"] = availableProduct("P1", "U1")
	store.users["U1"] = &models.User{UserID: "U1", Name: "Thu", Email: "thu@example.com", Phone: "0123"}
	svc := newTestService(store)

	created, err := svc.CreateRequest(context.Background(), "U1", createInput("P1"))
	require.NoError(t, err)

	_, err = svc.RequestByID(context.Background(), "U2", "user", created.RequestID)
	require.ErrorIs(t, err, ErrUnauthorized)

	detail, err := svc.RequestByID(context.Background(), "U1", "user", created.RequestID)
	require.NoError(t, err)
	require.Len(t, detail.Products, 1)
	assert.Equal(t, "P1", detail.Products[0].ProductID)
	assert.Equal(t, models.ProductStatusPendingRequest, detail.Products[0].Status)
	require.NotNil(t, detail.Requester)
	assert.Equal(t, "thu@example.com", detail.Requester.Email)
}

func TestCompletedItemCount(t *testing.T) {
	store := newFakeStore()
	for _, pid := range []string{"P1", "P2", "P3", "P4"} {
		store.products[pid] = availableProduct(pid, "U1")
	}
	svc := newTestService(store)

	first, err := svc.CreateRequest(context.Background(), "U1", createInput("P1", "P2"))
	require.NoError(t, err)
	second, err := svc.CreateRequest(context.Background(), "U1", CreateRequestInput{
		ProductIDs:     []string{"P3"},
		CollectionDate: otherDay,
		TimeSlot:       models.TimeSlotEvening,
	})
	require.NoError(t, err)
	// A third request stays scheduled and must not count.
	_, err = svc.CreateRequest(context.Background(), "U1", CreateRequestInput{
		ProductIDs:     []string{"P4"},
		CollectionDate: otherDay,
		TimeSlot:       models.TimeSlotMorning,
	})
	require.NoError(t, err)

	_, err = svc.CompleteRequest(context.Background(), "U1", "user", first.RequestID, models.PaymentStatusPaid)
	require.NoError(t, err)
	_, err = svc.CompleteRequest(context.Background(), "U1", "user", second.RequestID, models.PaymentStatusPaid)
	require.NoError(t, err)

	count, err := svc.CompletedItemCount(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = svc.CompletedItemCount(context.Background(), "U2")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
