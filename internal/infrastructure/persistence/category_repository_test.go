package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupCategoryTestDB creates an in-memory SQLite database for testing
func setupCategoryTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE categories (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			sort_order INTEGER NOT NULL DEFAULT 0
		)
	`).Error
	require.NoError(t, err)

	// Minimal products table, only what HasProducts queries
	err = db.Exec(`
		CREATE TABLE products (
			id TEXT PRIMARY KEY,
			category_id TEXT
		)
	`).Error
	require.NoError(t, err)

	return db
}

func mustNewCategory(t *testing.T, name, slug string) *catalog.Category {
	category, err := catalog.NewCategory(name, slug)
	require.NoError(t, err)
	return category
}

func TestGormCategoryRepository_SaveAndFind(t *testing.T) {
	db := setupCategoryTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()

	category := mustNewCategory(t, "Electronics", "electronics")
	require.NoError(t, repo.Save(ctx, category))

	t.Run("finds by ID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, category.ID)
		require.NoError(t, err)
		assert.Equal(t, "Electronics", found.Name)
		assert.Equal(t, "electronics", found.Slug)
	})

	t.Run("finds by slug case-insensitively", func(t *testing.T) {
		found, err := repo.FindBySlug(ctx, "ELECTRONICS")
		require.NoError(t, err)
		assert.Equal(t, category.ID, found.ID)
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCategoryRepository_SaveUpdatesExisting(t *testing.T) {
	db := setupCategoryTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()

	category := mustNewCategory(t, "Books", "books")
	require.NoError(t, repo.Save(ctx, category))

	require.NoError(t, category.Update("Books & Media", "books-media"))
	require.NoError(t, repo.Save(ctx, category))

	found, err := repo.FindBySlug(ctx, "books-media")
	require.NoError(t, err)
	assert.Equal(t, "Books & Media", found.Name)
	assert.Equal(t, 2, found.Version)

	_, err = repo.FindBySlug(ctx, "books")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCategoryRepository_FindAll(t *testing.T) {
	db := setupCategoryTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()

	second := mustNewCategory(t, "Accessories", "accessories")
	second.SetSortOrder(2)
	first := mustNewCategory(t, "Laptops", "laptops")
	first.SetSortOrder(1)
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, first))

	categories, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "laptops", categories[0].Slug)
	assert.Equal(t, "accessories", categories[1].Slug)
}

func TestGormCategoryRepository_Delete(t *testing.T) {
	db := setupCategoryTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()

	category := mustNewCategory(t, "Clearance", "clearance")
	require.NoError(t, repo.Save(ctx, category))

	require.NoError(t, repo.Delete(ctx, category.ID))

	_, err := repo.FindByID(ctx, category.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	t.Run("deleting again returns not found", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, category.ID), shared.ErrNotFound)
	})
}

func TestGormCategoryRepository_HasProducts(t *testing.T) {
	db := setupCategoryTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()

	category := mustNewCategory(t, "Audio", "audio")
	require.NoError(t, repo.Save(ctx, category))

	has, err := repo.HasProducts(ctx, category.ID)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, db.Exec(
		`INSERT INTO products (id, category_id) VALUES (?, ?)`,
		uuid.NewString(), category.ID.String(),
	).Error)

	has, err = repo.HasProducts(ctx, category.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestGormCategoryRepository_ExistsBySlug(t *testing.T) {
	db := setupCategoryTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()

	category := mustNewCategory(t, "Gaming", "gaming")
	require.NoError(t, repo.Save(ctx, category))

	exists, err := repo.ExistsBySlug(ctx, "GAMING")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsBySlug(ctx, "garden")
	require.NoError(t, err)
	assert.False(t, exists)
}
