package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"fixwell/pkg/config"
	"fixwell/pkg/model"
)

const (
	LockCollectionName = "Appointment_locks"
)

// AppointmentLockRepository hands out short-lived advisory locks keyed
// by slot coordinates. Acquisition races resolve through the unique _id
// index; callers treat a duplicate key error as "someone else holds it".
type AppointmentLockRepository interface {
	Create(ctx context.Context, lock *model.AppointmentLock) error
	Delete(ctx context.Context, id string) error
}

type mongoAppointmentLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAppointmentLockRepository(cfg *config.Config) AppointmentLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoAppointmentLockRepository) Create(ctx context.Context, lock *model.AppointmentLock) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock.CreatedAt = now
	if lock.ExpiresAt.IsZero() {
		lock.ExpiresAt = now.Add(r.cfg.SlotLockTTL)
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		return err
	}
	return nil
}

func (r *mongoAppointmentLockRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", id, err)
	}
	return nil
}
