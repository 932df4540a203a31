//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/infrastructure/migration"
	"github.com/wms/backend/migrations"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a PostgreSQL container and applies the embedded migrations.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("wms_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrations.FS, ".", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return db
}

func TestPostgres_ConcurrentLinksClaimDistinctSlots(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newPostgresDB(t))
	tenantID, clientID := uuid.New(), uuid.New()

	p, err := catalog.NewProduct(tenantID, clientID, "SKU-A", "Product A", "BOLCOM", "bol-a")
	require.NoError(t, err)
	require.NoError(t, repo.CreateBatch(ctx, []*catalog.Product{p}))

	const writers = 4
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.AddPlatformLink(ctx, tenantID, clientID, p.ID, catalog.PlatformLink{
				Slot:       2,
				Platform:   "WOOCOMMERCE",
				ExternalID: uuid.NewString(),
				LinkedAt:   time.Now(),
			})
		}(i)
	}
	wg.Wait()

	var won int
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, catalog.ErrLinkConflict)
	}
	assert.Equal(t, 1, won, "exactly one writer claims slot 2")

	got, err := repo.FindByID(ctx, tenantID, clientID, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Links, 2)
}

func TestPostgres_DuplicateSKURejected(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newPostgresDB(t))
	tenantID, clientID := uuid.New(), uuid.New()

	first, err := catalog.NewProduct(tenantID, clientID, "SKU-A", "Product A", "BOLCOM", "1")
	require.NoError(t, err)
	require.NoError(t, repo.CreateBatch(ctx, []*catalog.Product{first}))

	second, err := catalog.NewProduct(tenantID, clientID, "SKU-A", "Product A", "BOLCOM", "2")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.CreateBatch(ctx, []*catalog.Product{second}), catalog.ErrDuplicateSKU)
}
