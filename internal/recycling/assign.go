package recycling

import (
	"fmt"
	"strings"
	"time"

	"ewaste-marketplace-api-server/internal/models"

	"github.com/google/uuid"
)

// agentIsFree reports whether the agent has no assignment at exactly this
// collection date and time slot. Exact equality only, no overlap reasoning.
func agentIsFree(agent models.DeliveryAgent, date time.Time, timeSlot string) bool {
	for _, e := range agent.AssignedRequests {
		if e.TimeSlot == timeSlot && e.CollectionDate.Equal(date) {
			return false
		}
	}
	return true
}

// pickAgent selects the first agent free at (date, timeSlot). When every
// agent is busy it falls back to the agent with the fewest assignments, first
// minimum wins. The caller guarantees agents is non-empty.
func pickAgent(agents []models.DeliveryAgent, date time.Time, timeSlot string) models.DeliveryAgent {
	for _, a := range agents {
		if agentIsFree(a, date, timeSlot) {
			return a
		}
	}

	best := agents[0]
	for _, a := range agents[1:] {
		if len(a.AssignedRequests) < len(best.AssignedRequests) {
			best = a
		}
	}
	return best
}

// defaultAgent builds the bootstrap agent used when the registry is empty at
// assignment time. Placeholder contact and vehicle data, empty schedule.
func defaultAgent(now time.Time) *models.DeliveryAgent {
	return &models.DeliveryAgent{
		AgentID:          fmt.Sprintf("AGT-%s", strings.ToUpper(uuid.New().String()[:8])),
		Name:             "Default Pickup Agent",
		Phone:            "0000000000",
		Vehicle:          models.VehicleInfo{Type: "VAN", PlateNumber: "N/A", Model: "N/A"},
		AssignedRequests: []models.AgentAssignment{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
