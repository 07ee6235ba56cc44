package database

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is an explicitly constructed database handle. It is passed to the
// store layer instead of living in a package global, and Connect is
// idempotent: calling it on an already-connected handle just pings.
type Mongo struct {
	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
	uri    string
}

func NewMongo(mongoURI string) *Mongo {
	return &Mongo{uri: mongoURI}
}

// Connect dials MongoDB and verifies the connection with a ping. Safe to
// call more than once; subsequent calls re-ping the existing client.
func (m *Mongo) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return m.client.Ping(pingCtx, nil)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Longer server selection timeout for Atlas connections
	clientOptions := options.Client().ApplyURI(m.uri)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(dialCtx, clientOptions)
	if err != nil {
		return err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return err
	}

	m.client = client
	m.db = client.Database(databaseName(m.uri))

	log.Println("✅ Connected to MongoDB")
	return nil
}

// Database returns the connected database. Connect must have succeeded first.
func (m *Mongo) Database() *mongo.Database {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db
}

func (m *Mongo) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := m.client.Disconnect(ctx)
	m.client = nil
	m.db = nil
	return err
}

// databaseName extracts the database name from the connection URI, falling
// back to "quietly". Format: mongodb://.../database_name?...
func databaseName(mongoURI string) string {
	name := "quietly"
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			name = dbPart
		}
	}
	return name
}
