package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	connectionTimeout = 10 * time.Second

	RulesCollection        = "Availability_rules"
	ServiceTypesCollection = "Service_types"
	AppointmentsCollection = "Appointments"
	LocksCollection        = "Appointment_locks"
)

// MongoHelper seeds and cleans the database behind the service under
// test. Going through the database keeps each suite independent of the
// admin service being up.
type MongoHelper struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoHelper(t *testing.T, uri, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping mongo: %v", err)
	}

	return &MongoHelper{client: client, db: client.Database(dbName)}
}

// CleanCollections empties the domain collections without dropping
// them, so validators and indexes survive between tests.
func (m *MongoHelper) CleanCollections(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	for _, name := range []string{AppointmentsCollection, LocksCollection, RulesCollection, ServiceTypesCollection} {
		if _, err := m.db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

func (m *MongoHelper) Insert(t *testing.T, collection string, doc any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if _, err := m.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		t.Fatalf("failed to insert into %s: %v", collection, err)
	}
}

// Count returns the number of documents matching the filter.
func (m *MongoHelper) Count(t *testing.T, collection string, filter bson.M) int64 {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	count, err := m.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collection, err)
	}
	return count
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := m.client.Disconnect(ctx); err != nil {
		t.Logf("failed to disconnect mongo client: %v", err)
	}
}
