package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	typeserrors "fixwell/internal/servicetypes/errors"
	"fixwell/pkg/config"
	mongotx "fixwell/pkg/db/mongo"
	"fixwell/pkg/model"
)

const (
	CollectionName = "Service_types"
)

type mongoServiceTypeRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ServiceTypeRepository interface {
	Create(ctx context.Context, st *model.ServiceType) error
	FindByID(ctx context.Context, id string) (*model.ServiceType, error)
	FindByName(ctx context.Context, name string) (*model.ServiceType, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.ServiceType, error)
	Update(ctx context.Context, id string, st *model.ServiceType) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoServiceTypeRepository(cfg *config.Config) ServiceTypeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoServiceTypeRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoServiceTypeRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoServiceTypeRepository) Create(ctx context.Context, st *model.ServiceType) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	st.CreatedAt = now
	st.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, st); err != nil {
		return fmt.Errorf("failed to create service type: %w", err)
	}
	return nil
}

func (r *mongoServiceTypeRepository) FindByID(ctx context.Context, id string) (*model.ServiceType, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", typeserrors.ErrInvalidID, id)
	}

	var st model.ServiceType
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&st)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", typeserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find service type: %w", err)
	}

	return &st, nil
}

func (r *mongoServiceTypeRepository) FindByName(ctx context.Context, name string) (*model.ServiceType, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var st model.ServiceType
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&st)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", typeserrors.ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to find service type by name: %w", err)
	}

	return &st, nil
}

func (r *mongoServiceTypeRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.ServiceType, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query service types: %w", err)
	}
	defer cursor.Close(ctx)

	var types []*model.ServiceType
	if err = cursor.All(ctx, &types); err != nil {
		return nil, fmt.Errorf("failed to decode service types: %w", err)
	}
	return types, nil
}

func (r *mongoServiceTypeRepository) Update(ctx context.Context, id string, st *model.ServiceType) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", typeserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":                 st.Name,
			"duration_minutes":     st.DurationMinutes,
			"buffer_minutes":       st.BufferMinutes,
			"allowed_days":         st.AllowedDays,
			"is_exclusive":         st.IsExclusive,
			"exclusive_days":       st.ExclusiveDays,
			"max_bookings_per_day": st.MaxBookingsPerDay,
			"min_advance_hours":    st.MinAdvanceHours,
			"max_advance_days":     st.MaxAdvanceDays,
			"requires_approval":    st.RequiresApproval,
			"is_active":            st.IsActive,
			"updated_at":           time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update service type: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", typeserrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoServiceTypeRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", typeserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete service type: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", typeserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoServiceTypeRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count service types: %w", err)
	}
	return count, nil
}

func (r *mongoServiceTypeRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
