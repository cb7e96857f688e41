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

	apptserrors "fixwell/internal/appointments/errors"
	"fixwell/pkg/config"
	mongotx "fixwell/pkg/db/mongo"
	"fixwell/pkg/model"
)

const (
	CollectionName = "Appointments"
)

var activeStatuses = []model.AppointmentStatus{model.StatusPending, model.StatusConfirmed}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error)
	FindActiveInRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
	CountActiveForService(ctx context.Context, serviceTypeID string, from, to time.Time) (int64, error)
	FindInRange(ctx context.Context, from, to time.Time, serviceTypeID string, limit int, offset int64) ([]*model.Appointment, error)
	CountInRange(ctx context.Context, from, to time.Time, serviceTypeID string) (int64, error)
	FindByCustomerEmail(ctx context.Context, email string, limit int, offset int64) ([]*model.Appointment, error)
	CountByCustomerEmail(ctx context.Context, email string) (int64, error)
	Update(ctx context.Context, id string, appt *model.Appointment) (*mongo.UpdateResult, error)
	UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus, notes *string) (*mongo.UpdateResult, error)
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	appt.CreatedAt = now
	appt.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", apptserrors.ErrInvalidID, id)
	}

	var appt model.Appointment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", apptserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appt, nil
}

func (r *mongoAppointmentRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "scheduled_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err = cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

// FindActiveInRange returns PENDING and CONFIRMED appointments whose
// start falls in [from, to). Cancelled and completed appointments do
// not occupy their slot.
func (r *mongoAppointmentRepository) FindActiveInRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":         bson.M{"$in": activeStatuses},
		"scheduled_date": bson.M{"$gte": from, "$lt": to},
	}

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query active appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err = cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepository) CountActiveForService(ctx context.Context, serviceTypeID string, from, to time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"service_type_id": serviceTypeID,
		"status":          bson.M{"$in": activeStatuses},
		"scheduled_date":  bson.M{"$gte": from, "$lt": to},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments for service type: %w", err)
	}
	return count, nil
}

func rangeFilter(from, to time.Time, serviceTypeID string) bson.M {
	filter := bson.M{
		"scheduled_date": bson.M{"$gte": from, "$lt": to},
	}
	if serviceTypeID != "" {
		filter["service_type_id"] = serviceTypeID
	}
	return filter
}

// FindInRange returns appointments of every status starting in
// [from, to), optionally narrowed to one service type. Admin listings
// use this; availability math uses FindActiveInRange.
func (r *mongoAppointmentRepository) FindInRange(ctx context.Context, from, to time.Time, serviceTypeID string, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "scheduled_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, rangeFilter(from, to, serviceTypeID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments in range: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err = cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepository) CountInRange(ctx context.Context, from, to time.Time, serviceTypeID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, rangeFilter(from, to, serviceTypeID))
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments in range: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) FindByCustomerEmail(ctx context.Context, email string, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "scheduled_date", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"customer_email": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments by customer: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err = cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepository) CountByCustomerEmail(ctx context.Context, email string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"customer_email": email})
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments by customer: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) Update(ctx context.Context, id string, appt *model.Appointment) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", apptserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"service_type_id":  appt.ServiceTypeID,
			"customer_name":    appt.CustomerName,
			"customer_email":   appt.CustomerEmail,
			"customer_phone":   appt.CustomerPhone,
			"property_address": appt.PropertyAddress,
			"time_zone":        appt.TimeZone,
			"scheduled_date":   appt.ScheduledDate,
			"duration_minutes": appt.DurationMinutes,
			"status":           appt.Status,
			"notes":            appt.Notes,
			"updated_at":       time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", apptserrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus, notes *string) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", apptserrors.ErrInvalidID, id)
	}

	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if notes != nil {
		set["notes"] = *notes
	}
	update := bson.M{"$set": set}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", apptserrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoAppointmentRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
