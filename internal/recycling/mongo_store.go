package recycling

import (
	"context"
	"time"

	"ewaste-marketplace-api-server/internal/models"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the MongoDB-backed Store implementation.
type MongoStore struct {
	DB *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{DB: db}
}

func (m *MongoStore) ProductByID(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	err := m.DB.Collection("products").FindOne(ctx, bson.M{"productID": productID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.Wrapf(ErrNotFound, "product %s", productID)
		}
		return nil, err
	}
	return &product, nil
}

func (m *MongoStore) SetProductsPending(ctx context.Context, productIDs []string, at time.Time) error {
	_, err := m.DB.Collection("products").UpdateMany(ctx,
		bson.M{"productID": bson.M{"$in": productIDs}},
		bson.M{"$set": bson.M{
			"status":    models.ProductStatusPendingRequest,
			"updatedAt": at,
		}},
	)
	return err
}

func (m *MongoStore) SetProductsAvailable(ctx context.Context, productIDs []string, at time.Time) error {
	_, err := m.DB.Collection("products").UpdateMany(ctx,
		bson.M{"productID": bson.M{"$in": productIDs}},
		bson.M{"$set": bson.M{
			"status":    models.ProductStatusAvailable,
			"updatedAt": at,
		}},
	)
	return err
}

func (m *MongoStore) SetProductsRecycled(ctx context.Context, productIDs []string, recyclerUserID string, at time.Time) error {
	_, err := m.DB.Collection("products").UpdateMany(ctx,
		bson.M{"productID": bson.M{"$in": productIDs}},
		bson.M{"$set": bson.M{
			"status":           models.ProductStatusRecycled,
			"recycledByUserID": recyclerUserID,
			"recycledDate":     at,
			"updatedAt":        at,
		}},
	)
	return err
}

// ListAgents returns the registry in creation order so agent selection is
// deterministic across invocations.
func (m *MongoStore) ListAgents(ctx context.Context) ([]models.DeliveryAgent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := m.DB.Collection("delivery_agents").Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var agents []models.DeliveryAgent
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func (m *MongoStore) AgentByID(ctx context.Context, agentID string) (*models.DeliveryAgent, error) {
	var agent models.DeliveryAgent
	err := m.DB.Collection("delivery_agents").FindOne(ctx, bson.M{"agentID": agentID}).Decode(&agent)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.Wrapf(ErrNotFound, "agent %s", agentID)
		}
		return nil, err
	}
	return &agent, nil
}

func (m *MongoStore) InsertAgent(ctx context.Context, agent *models.DeliveryAgent) error {
	result, err := m.DB.Collection("delivery_agents").InsertOne(ctx, agent)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		agent.ID = oid
	}
	return nil
}

// AppendAssignment books the entry with an atomic conditional update: it
// only matches while the agent's scheduleVersion is unchanged and the
// requestID is not already scheduled, and bumps the version on success.
func (m *MongoStore) AppendAssignment(ctx context.Context, agentID string, version int64, entry models.AgentAssignment) (bool, error) {
	collection := m.DB.Collection("delivery_agents")

	filter := bson.M{
		"agentID":                    agentID,
		"scheduleVersion":            version,
		"assignedRequests.requestID": bson.M{"$ne": entry.RequestID},
	}
	update := bson.M{
		"$push": bson.M{"assignedRequests": entry},
		"$inc":  bson.M{"scheduleVersion": 1},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if result.ModifiedCount == 1 {
		return true, nil
	}

	// No document modified: either the requestID is already on the schedule
	// (idempotent success) or the version moved under us (conflict).
	count, err := collection.CountDocuments(ctx, bson.M{
		"agentID":                    agentID,
		"assignedRequests.requestID": entry.RequestID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (m *MongoStore) RemoveAssignment(ctx context.Context, agentID, requestID string) error {
	result, err := m.DB.Collection("delivery_agents").UpdateOne(ctx,
		bson.M{"agentID": agentID},
		bson.M{
			"$pull": bson.M{"assignedRequests": bson.M{"requestID": requestID}},
			"$inc":  bson.M{"scheduleVersion": 1},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errors.Wrapf(ErrNotFound, "agent %s", agentID)
	}
	return nil
}

func (m *MongoStore) InsertRequest(ctx context.Context, req *models.RecycleRequest) error {
	result, err := m.DB.Collection("recycle_requests").InsertOne(ctx, req)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid
	}
	return nil
}

func (m *MongoStore) RequestByID(ctx context.Context, requestID string) (*models.RecycleRequest, error) {
	var req models.RecycleRequest
	err := m.DB.Collection("recycle_requests").FindOne(ctx, bson.M{"requestID": requestID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.Wrapf(ErrNotFound, "request %s", requestID)
		}
		return nil, err
	}
	return &req, nil
}

func (m *MongoStore) RequestsByUser(ctx context.Context, userID string) ([]models.RecycleRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.DB.Collection("recycle_requests").Find(ctx, bson.M{"userID": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reqs []models.RecycleRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (m *MongoStore) PatchRequest(ctx context.Context, requestID string, patch RequestPatch) error {
	set := bson.M{"updatedAt": patch.UpdatedAt}
	if patch.Status != "" {
		set["status"] = patch.Status
	}
	if patch.PaymentStatus != "" {
		set["paymentStatus"] = patch.PaymentStatus
	}
	if patch.DeliveryAgent != nil {
		set["deliveryAgent"] = patch.DeliveryAgent
	}

	result, err := m.DB.Collection("recycle_requests").UpdateOne(ctx,
		bson.M{"requestID": requestID},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errors.Wrapf(ErrNotFound, "request %s", requestID)
	}
	return nil
}

func (m *MongoStore) UserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := m.DB.Collection("users").FindOne(ctx, bson.M{"userID": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.Wrapf(ErrNotFound, "user %s", userID)
		}
		return nil, err
	}
	return &user, nil
}
