package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			description TEXT,
			affiliate_link TEXT NOT NULL,
			price TEXT,
			image_url TEXT,
			image_path TEXT,
			category TEXT,
			is_top_pick BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// CleanupDB removes all rows between test cases.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "TRUNCATE products"); err != nil {
		t.Fatalf("failed to truncate products: %v", err)
	}
}

// SeedProducts inserts a fixed set of products with staggered creation
// times so ordering assertions are deterministic. Returns ids in
// insertion order (oldest first).
func SeedProducts(t *testing.T, pool *pgxpool.Pool) []uuid.UUID {
	t.Helper()

	ctx := context.Background()

	rows := []struct {
		name      string
		category  string
		isTopPick bool
		ageOffset time.Duration
	}{
		{"Summer Tee", "tees", true, 5 * time.Minute},
		{"Winter Hoodie", "hoodies", false, 4 * time.Minute},
		{"Canvas Tote", "bags", true, 3 * time.Minute},
		{"Classic Tee", "tees", false, 2 * time.Minute},
		{"Travel Mug", "mugs", false, 1 * time.Minute},
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for i, row := range rows {
		var id uuid.UUID
		err := pool.QueryRow(ctx, `
			INSERT INTO products (name, description, affiliate_link, price, image_url, image_path, category, is_top_pick, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW() - $9::interval)
			RETURNING id`,
			row.name,
			fmt.Sprintf("Description for %s", row.name),
			fmt.Sprintf("https://aff.example/%d", i),
			"19.99",
			fmt.Sprintf("https://cdn.example.com/%d.png", i),
			fmt.Sprintf("%d.png", i),
			row.category,
			row.isTopPick,
			row.ageOffset.String(),
		).Scan(&id)
		if err != nil {
			t.Fatalf("failed to seed product %q: %v", row.name, err)
		}
		ids = append(ids, id)
	}

	return ids
}

// memObject is a stored blob in the in-memory object storage.
type memObject struct {
	data        []byte
	contentType string
}

// MemStorage is an in-memory ObjectStorage used to exercise the full
// stack without a real bucket.
type MemStorage struct {
	mu      sync.Mutex
	objects map[string]memObject
}

// NewMemStorage creates an empty in-memory object store.
func NewMemStorage() *MemStorage {
	return &MemStorage{objects: make(map[string]memObject)}
}

func (m *MemStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, overwrite bool) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[key]; exists && !overwrite {
		return fmt.Errorf("object already exists: %s", key)
	}
	m.objects[key] = memObject{data: bytes.Clone(data), contentType: contentType}
	return nil
}

func (m *MemStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemStorage) PublicURL(key string) (string, error) {
	return "https://cdn.test.local/" + key, nil
}

// Len reports the number of stored objects.
func (m *MemStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Has reports whether an object exists under key.
func (m *MemStorage) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}
