package adapters

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"places_backend/internal/feature/places/domain"
	"places_backend/internal/feature/places/domain/entity"
	"places_backend/internal/platform/apperr"
)

// setupTestDB prepares an in-memory SQLite database for testing.
// A single connection keeps every goroutine on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(append(Models(), &ownerRow{}, &membershipRow{})...)
	require.NoError(t, err, "failed to migrate table")

	return db
}

func seedOwner(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	require.NoError(t, db.Create(&ownerRow{ID: id}).Error)
}

func newPlace(id, creatorID string) *entity.Place {
	return &entity.Place{
		ID:          id,
		Title:       "Cafe",
		Description: "Nice place to sit",
		Address:     "1 Main St",
		Location:    entity.Location{Lat: 40.7, Lng: -73.9},
		Image:       "uploads/images/" + id + ".png",
		CreatorID:   creatorID,
	}
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestPlacePostgres_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlacePostgres(db, 0)
		seedOwner(t, db, "u1")
		require.NoError(t, repo.CreateWithOwner(context.Background(), newPlace("p1", "u1")))

		got, err := repo.FindByID(context.Background(), "p1")

		require.NoError(t, err)
		assert.Equal(t, "Cafe", got.Title)
		assert.Equal(t, entity.Location{Lat: 40.7, Lng: -73.9}, got.Location)
		assert.Equal(t, "u1", got.CreatorID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := NewPlacePostgres(setupTestDB(t), 0)

		got, err := repo.FindByID(context.Background(), "missing")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, domain.ErrPlaceNotFound)
	})
}

func TestPlacePostgres_FindByCreator(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		repo := NewPlacePostgres(setupTestDB(t), 0)

		_, err := repo.FindByCreator(context.Background(), "ghost")

		assert.ErrorIs(t, err, domain.ErrOwnerNotFound)
	})

	t.Run("user without places", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		repo := NewPlacePostgres(db, 0)

		places, err := repo.FindByCreator(context.Background(), "u1")

		require.NoError(t, err)
		assert.Empty(t, places)
	})

	t.Run("only the user's own places", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		seedOwner(t, db, "u2")
		repo := NewPlacePostgres(db, 0)
		require.NoError(t, repo.CreateWithOwner(context.Background(), newPlace("p1", "u1")))
		require.NoError(t, repo.CreateWithOwner(context.Background(), newPlace("p2", "u2")))
		require.NoError(t, repo.CreateWithOwner(context.Background(), newPlace("p3", "u1")))

		places, err := repo.FindByCreator(context.Background(), "u1")

		require.NoError(t, err)
		ids := []string{}
		for _, p := range places {
			ids = append(ids, p.ID)
		}
		assert.ElementsMatch(t, []string{"p1", "p3"}, ids)
	})
}

func TestPlacePostgres_UpdateDetails(t *testing.T) {
	t.Run("creator updates title and description", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		repo := NewPlacePostgres(db, 0)
		require.NoError(t, repo.CreateWithOwner(context.Background(), newPlace("p1", "u1")))

		got, err := repo.UpdateDetails(context.Background(), "p1", "u1", "Bar", "Loud place at night")

		require.NoError(t, err)
		assert.Equal(t, "Bar", got.Title)
		assert.Equal(t, "Loud place at night", got.Description)
		assert.Equal(t, "1 Main St", got.Address, "address must be unchanged")

		stored, err := repo.FindByID(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Bar", stored.Title)
	})

	t.Run("non-creator is forbidden and nothing changes", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		repo := NewPlacePostgres(db, 0)
		require.NoError(t, repo.CreateWithOwner(context.Background(), newPlace("p1", "u1")))

		_, err := repo.UpdateDetails(context.Background(), "p1", "intruder", "Hacked", "Hacked place")

		assert.ErrorIs(t, err, domain.ErrEditForbidden)
		stored, err := repo.FindByID(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Cafe", stored.Title)
		assert.Equal(t, "Nice place to sit", stored.Description)
	})

	t.Run("unknown place", func(t *testing.T) {
		repo := NewPlacePostgres(setupTestDB(t), 0)

		_, err := repo.UpdateDetails(context.Background(), "missing", "u1", "Bar", "Loud place")

		assert.ErrorIs(t, err, domain.ErrPlaceNotFound)
	})
}

func TestPlacePostgres_CreateWithOwner(t *testing.T) {
	t.Run("place and membership commit together", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		repo := NewPlacePostgres(db, 0)

		p := newPlace("p1", "u1")
		err := repo.CreateWithOwner(context.Background(), p)

		require.NoError(t, err)
		assert.False(t, p.CreatedAt.IsZero())
		assert.EqualValues(t, 1, countRows(t, db, &PlaceModel{}, "id = ?", "p1"))
		assert.EqualValues(t, 1, countRows(t, db, &membershipRow{}, "user_id = ? AND place_id = ?", "u1", "p1"))
	})

	t.Run("unknown owner creates nothing", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlacePostgres(db, 0)

		err := repo.CreateWithOwner(context.Background(), newPlace("p1", "ghost"))

		assert.ErrorIs(t, err, domain.ErrOwnerNotFound)
		assert.EqualValues(t, 0, countRows(t, db, &PlaceModel{}, "1 = 1"))
		assert.EqualValues(t, 0, countRows(t, db, &membershipRow{}, "1 = 1"))
	})

	t.Run("failure in the second write rolls back the first", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		// A stale membership row makes the append fail on its primary key.
		require.NoError(t, db.Create(&membershipRow{UserID: "u1", PlaceID: "p1"}).Error)
		repo := NewPlacePostgres(db, 0)

		err := repo.CreateWithOwner(context.Background(), newPlace("p1", "u1"))

		assert.ErrorIs(t, err, domain.ErrCreateFailed)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
		assert.EqualValues(t, 0, countRows(t, db, &PlaceModel{}, "id = ?", "p1"))
	})

	t.Run("caller cancellation does not abort the commit", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		repo := NewPlacePostgres(db, 0)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := repo.CreateWithOwner(ctx, newPlace("p1", "u1"))

		require.NoError(t, err)
		assert.EqualValues(t, 1, countRows(t, db, &membershipRow{}, "place_id = ?", "p1"))
	})

	t.Run("concurrent creates for one owner lose no entries", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		repo := NewPlacePostgres(db, 0)

		const n = 20
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := range n {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- repo.CreateWithOwner(context.Background(), newPlace(fmt.Sprintf("p%02d", i), "u1"))
			}(i)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
		assert.EqualValues(t, n, countRows(t, db, &membershipRow{}, "user_id = ?", "u1"))
		places, err := repo.FindByCreator(context.Background(), "u1")
		require.NoError(t, err)
		assert.Len(t, places, n)
	})
}

func TestPlacePostgres_DeleteWithOwner(t *testing.T) {
	t.Run("place and membership are removed together", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		repo := NewPlacePostgres(db, 0)
		require.NoError(t, repo.CreateWithOwner(context.Background(), newPlace("p1", "u1")))

		deleted, err := repo.DeleteWithOwner(context.Background(), "p1", "u1")

		require.NoError(t, err)
		assert.Equal(t, "uploads/images/p1.png", deleted.Image)
		assert.EqualValues(t, 0, countRows(t, db, &PlaceModel{}, "id = ?", "p1"))
		assert.EqualValues(t, 0, countRows(t, db, &membershipRow{}, "place_id = ?", "p1"))
	})

	t.Run("unknown place", func(t *testing.T) {
		repo := NewPlacePostgres(setupTestDB(t), 0)

		_, err := repo.DeleteWithOwner(context.Background(), "missing", "u1")

		assert.ErrorIs(t, err, domain.ErrPlaceNotFound)
	})

	t.Run("non-creator is forbidden and nothing changes", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		repo := NewPlacePostgres(db, 0)
		require.NoError(t, repo.CreateWithOwner(context.Background(), newPlace("p1", "u1")))

		_, err := repo.DeleteWithOwner(context.Background(), "p1", "intruder")

		assert.ErrorIs(t, err, domain.ErrDeleteForbidden)
		assert.EqualValues(t, 1, countRows(t, db, &PlaceModel{}, "id = ?", "p1"))
		assert.EqualValues(t, 1, countRows(t, db, &membershipRow{}, "place_id = ?", "p1"))
	})

	t.Run("missing owner record is a consistency violation", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		repo := NewPlacePostgres(db, 0)
		require.NoError(t, repo.CreateWithOwner(context.Background(), newPlace("p1", "u1")))
		require.NoError(t, db.Where("id = ?", "u1").Delete(&ownerRow{}).Error)

		_, err := repo.DeleteWithOwner(context.Background(), "p1", "u1")

		assert.ErrorIs(t, err, domain.ErrConsistencyViolation)
		assert.Equal(t, apperr.KindConsistencyViolation, apperr.KindOf(err))
		assert.EqualValues(t, 1, countRows(t, db, &PlaceModel{}, "id = ?", "p1"), "place must survive")
	})

	t.Run("missing back-reference rolls back the place delete", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		repo := NewPlacePostgres(db, 0)
		require.NoError(t, repo.CreateWithOwner(context.Background(), newPlace("p1", "u1")))
		require.NoError(t, db.Where("place_id = ?", "p1").Delete(&membershipRow{}).Error)

		_, err := repo.DeleteWithOwner(context.Background(), "p1", "u1")

		assert.ErrorIs(t, err, domain.ErrConsistencyViolation)
		assert.EqualValues(t, 1, countRows(t, db, &PlaceModel{}, "id = ?", "p1"), "place delete must be rolled back")
	})

	t.Run("concurrent deletes of one place: one success, one not found", func(t *testing.T) {
		db := setupTestDB(t)
		seedOwner(t, db, "u1")
		repo := NewPlacePostgres(db, 0)
		require.NoError(t, repo.CreateWithOwner(context.Background(), newPlace("p1", "u1")))

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = repo.DeleteWithOwner(context.Background(), "p1", "u1")
			}(i)
		}
		wg.Wait()

		successes, notFound := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				successes++
			case apperr.IsKind(err, apperr.KindNotFound):
				notFound++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, 1, notFound)
		assert.EqualValues(t, 0, countRows(t, db, &membershipRow{}, "user_id = ?", "u1"))
	})
}
