package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/parkingcontrol/internal/parkingspot/domain"
	spottest "github.com/smallbiznis/parkingcontrol/internal/parkingspot/testing"
	"github.com/smallbiznis/parkingcontrol/pkg/db"
	"github.com/smallbiznis/parkingcontrol/pkg/db/pagination"
	"github.com/smallbiznis/parkingcontrol/pkg/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"pgregory.net/rapid"
)

type fataler interface {
	Fatalf(format string, args ...any)
}

func openTestDB(t fataler) *gorm.DB {
	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := conn.AutoMigrate(&domain.ParkingSpot{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func closeTestDB(conn *gorm.DB) {
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newTestRepo(t *testing.T) domain.Repository {
	t.Helper()

	conn := openTestDB(t)
	t.Cleanup(func() { closeTestDB(conn) })
	return New(conn, lock.NewLocalLocker())
}

func seed(t *testing.T, repo domain.Repository, n int) []domain.ParkingSpot {
	t.Helper()

	stored := make([]domain.ParkingSpot, 0, n)
	for i := 0; i < n; i++ {
		spot := spottest.NewParkingSpot(i)
		saved, err := repo.Save(context.Background(), &spot)
		require.NoError(t, err)
		stored = append(stored, *saved)
	}
	return stored
}

// sameSpot compares spots field by field, registration dates by instant.
func sameSpot(want, got domain.ParkingSpot) bool {
	if !want.RegistrationDate.Equal(got.RegistrationDate) {
		return false
	}
	want.RegistrationDate = time.Time{}
	got.RegistrationDate = time.Time{}
	return want == got
}

func TestListPageReturnsSeededRecords(t *testing.T) {
	repo := newTestRepo(t)
	seeded := seed(t, repo, 5)

	page, err := repo.ListPage(context.Background(), pagination.Of(0, 5))
	require.NoError(t, err)

	assert.Len(t, page.Content, 5)
	assert.Equal(t, int64(5), page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 5, page.Size)

	seen := map[uuid.UUID]bool{}
	for _, spot := range page.Content {
		assert.False(t, seen[spot.ID], "duplicate %s", spot.ID)
		seen[spot.ID] = true
	}
	for _, spot := range seeded {
		assert.True(t, seen[spot.ID], "missing %s", spot.ID)
	}
}

func TestListPageEmptyStore(t *testing.T) {
	repo := newTestRepo(t)

	page, err := repo.ListPage(context.Background(), pagination.Of(0, 10))
	require.NoError(t, err)
	assert.NotNil(t, page.Content)
	assert.Empty(t, page.Content)
	assert.Equal(t, int64(0), page.TotalElements)
	assert.Equal(t, 0, page.TotalPages)
}

func TestListPageAcrossPagesNeitherDuplicatesNorMisses(t *testing.T) {
	repo := newTestRepo(t)
	seeded := seed(t, repo, 12)

	sorts := []pagination.Sort{
		{},
		{Field: "registration_date", Direction: pagination.Desc},
		{Field: "licensePlateCar", Direction: pagination.Asc},
		{Field: "block", Direction: pagination.Asc},
	}
	for _, sort := range sorts {
		t.Run(fmt.Sprintf("%s_%s", sort.Field, sort.Direction), func(t *testing.T) {
			seen := map[uuid.UUID]int{}
			for p := 0; p < 3; p++ {
				req := pagination.Of(p, 5).WithSort(sort.Field, sort.Direction)
				if sort.Field == "" {
					req = pagination.Of(p, 5)
				}
				page, err := repo.ListPage(context.Background(), req)
				require.NoError(t, err)
				assert.Equal(t, int64(12), page.TotalElements)
				assert.Equal(t, 3, page.TotalPages)
				for _, spot := range page.Content {
					seen[spot.ID]++
				}
			}

			assert.Len(t, seen, len(seeded))
			for _, spot := range seeded {
				assert.Equal(t, 1, seen[spot.ID], "record %s", spot.ID)
			}
		})
	}
}

func TestListPageOrdersByRequestedField(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, 6)

	page, err := repo.ListPage(context.Background(), pagination.Of(0, 6).WithSort("registration_date", pagination.Desc))
	require.NoError(t, err)
	require.Len(t, page.Content, 6)
	for i := 1; i < len(page.Content); i++ {
		assert.False(t, page.Content[i].RegistrationDate.After(page.Content[i-1].RegistrationDate))
	}

	page, err = repo.ListPage(context.Background(), pagination.Of(0, 6))
	require.NoError(t, err)
	for i := 1; i < len(page.Content); i++ {
		assert.Less(t, page.Content[i-1].ID.String(), page.Content[i].ID.String())
	}
}

func TestListPageRejectsInvalidRequests(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.ListPage(ctx, pagination.Of(-1, 5))
	assert.ErrorIs(t, err, pagination.ErrInvalidPageRequest)

	_, err = repo.ListPage(ctx, pagination.Of(0, 0))
	assert.ErrorIs(t, err, pagination.ErrInvalidPageRequest)

	_, err = repo.ListPage(ctx, pagination.Of(0, pagination.MaxPageSize+1))
	assert.ErrorIs(t, err, pagination.ErrInvalidPageRequest)

	_, err = repo.ListPage(ctx, pagination.Of(0, 5).WithSort("password", pagination.Asc))
	assert.ErrorIs(t, err, domain.ErrInvalidSortField)
}

func TestFindByIDAbsent(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, 2)

	spot, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, spot)

	spot, err = repo.FindByID(context.Background(), uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, spot)
}

func TestSaveAssignsIDAndRoundTrips(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	spot := spottest.NewParkingSpot(3)
	saved, err := repo.Save(ctx, &spot)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.Equal(t, uuid.Nil, spot.ID, "input must not be mutated")

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, found)

	spot.ID = saved.ID
	assert.True(t, sameSpot(spot, *found), "want %+v got %+v", spot, *found)
	assert.True(t, sameSpot(*saved, *found))
	assert.Equal(t, time.UTC, found.RegistrationDate.Location())
}

func TestSaveKeepsCallerID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	spot := spottest.NewParkingSpot(4)
	spot.ID = uuid.New()
	saved, err := repo.Save(ctx, &spot)
	require.NoError(t, err)
	assert.Equal(t, spot.ID, saved.ID)
}

func TestSaveNormalizesRegistrationDateToUTC(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	spot := spottest.NewParkingSpot(5)
	spot.RegistrationDate = time.Date(2023, 6, 1, 9, 30, 0, 0, time.FixedZone("BRT", -3*3600))
	saved, err := repo.Save(ctx, &spot)
	require.NoError(t, err)

	assert.True(t, saved.RegistrationDate.Equal(spot.RegistrationDate))
	assert.Equal(t, 12, saved.RegistrationDate.Hour())
}

func TestSaveOverwritesExistingRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	spot := spottest.NewParkingSpot(1)
	spot.LicensePlateCar = "ABC-1234"
	saved, err := repo.Save(ctx, &spot)
	require.NoError(t, err)

	update := *saved
	update.LicensePlateCar = "XYZ-9999"
	update.ResponsibleName = "Maria Souza"
	updated, err := repo.Save(ctx, &update)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "XYZ-9999", updated.LicensePlateCar)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "XYZ-9999", found.LicensePlateCar)
	assert.Equal(t, "Maria Souza", found.ResponsibleName)

	page, err := repo.ListPage(ctx, pagination.Of(0, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)

	exists, err := repo.ExistsByLicensePlateCar(ctx, "ABC-1234")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	spot := spottest.NewParkingSpot(2)
	spot.ID = uuid.New()

	first, err := repo.Save(ctx, &spot)
	require.NoError(t, err)
	second, err := repo.Save(ctx, &spot)
	require.NoError(t, err)

	assert.True(t, sameSpot(*first, *second))

	page, err := repo.ListPage(ctx, pagination.Of(0, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)
}

func TestSaveDuplicateUniqueFieldConflicts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := spottest.NewParkingSpot(1)
	stored, err := repo.Save(ctx, &first)
	require.NoError(t, err)

	samePlate := spottest.NewParkingSpot(2)
	samePlate.LicensePlateCar = first.LicensePlateCar
	_, err = repo.Save(ctx, &samePlate)
	assert.ErrorIs(t, err, domain.ErrConflict)

	sameNumber := spottest.NewParkingSpot(3)
	sameNumber.ParkingSpotNumber = first.ParkingSpotNumber
	_, err = repo.Save(ctx, &sameNumber)
	assert.ErrorIs(t, err, domain.ErrConflict)

	page, err := repo.ListPage(ctx, pagination.Of(0, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)

	found, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, sameSpot(*stored, *found), "existing record changed: %+v", *found)
}

func TestSaveExistingWithAnotherRecordsKeysConflicts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seeded := seed(t, repo, 2)
	other, target := seeded[0], seeded[1]

	samePlate := target
	samePlate.LicensePlateCar = other.LicensePlateCar
	samePlate.ResponsibleName = "Someone Else"
	_, err := repo.Save(ctx, &samePlate)
	assert.ErrorIs(t, err, domain.ErrConflict)

	sameNumber := target
	sameNumber.ParkingSpotNumber = other.ParkingSpotNumber
	_, err = repo.Update(ctx, &sameNumber)
	assert.ErrorIs(t, err, domain.ErrConflict)

	for _, want := range seeded {
		found, err := repo.FindByID(ctx, want.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, sameSpot(want, *found), "record %s changed: %+v", want.ID, *found)
	}
}

func TestUpdateReplacesExistingRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seeded := seed(t, repo, 2)

	change := seeded[1]
	change.BrandCar = "Fiat"
	change.ColorCar = "white"
	updated, err := repo.Update(ctx, &change)
	require.NoError(t, err)
	assert.True(t, sameSpot(change, *updated))

	untouched, err := repo.FindByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	require.NotNil(t, untouched)
	assert.True(t, sameSpot(seeded[0], *untouched))
}

func TestUpdateMissingRecordIsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seeded := seed(t, repo, 2)

	unknown := spottest.NewParkingSpot(5)
	unknown.ID = uuid.New()
	_, err := repo.Update(ctx, &unknown)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Update(ctx, &domain.ParkingSpot{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Update(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidParkingSpot)

	// a delete between read and update must not bring the record back
	require.NoError(t, repo.Delete(ctx, seeded[0].ID))
	stale := seeded[0]
	stale.ColorCar = "black"
	_, err = repo.Update(ctx, &stale)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	found, err := repo.FindByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	page, err := repo.ListPage(ctx, pagination.Of(0, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)
}

func TestSaveNil(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Save(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidParkingSpot)
}

func TestConcurrentSavesOfSameIDKeepOneWrite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id := uuid.New()
	writes := make([]domain.ParkingSpot, 8)
	for i := range writes {
		spot := spottest.NewParkingSpot(1)
		spot.ID = id
		spot.ColorCar = fmt.Sprintf("color-%d", i)
		spot.ResponsibleName = fmt.Sprintf("Owner %d", i)
		writes[i] = spot
	}

	var wg sync.WaitGroup
	for i := range writes {
		wg.Add(1)
		go func(spot domain.ParkingSpot) {
			defer wg.Done()
			_, err := repo.Save(ctx, &spot)
			assert.NoError(t, err)
		}(writes[i])
	}
	wg.Wait()

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found)

	matched := false
	for _, w := range writes {
		if sameSpot(w, *found) {
			matched = true
		}
	}
	assert.True(t, matched, "stored state %+v mixes writes", *found)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seeded := seed(t, repo, 3)

	require.NoError(t, repo.Delete(ctx, seeded[1].ID))

	found, err := repo.FindByID(ctx, seeded[1].ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	err = repo.Delete(ctx, seeded[1].ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	page, err := repo.ListPage(ctx, pagination.Of(0, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
}

func TestExistsProbes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seeded := seed(t, repo, 2)

	exists, err := repo.ExistsByLicensePlateCar(ctx, seeded[0].LicensePlateCar)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByLicensePlateCar(ctx, "")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByParkingSpotNumber(ctx, seeded[1].ParkingSpotNumber)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByParkingSpotNumber(ctx, "Z999")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByApartmentAndBlock(ctx, seeded[0].Apartment, seeded[0].Block)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByApartmentAndBlock(ctx, seeded[0].Apartment, seeded[1].Block)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveRoundTripProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		conn := openTestDB(rt)
		defer closeTestDB(conn)
		repo := New(conn, lock.NewLocalLocker())
		ctx := context.Background()

		spot := spottest.ParkingSpot().Draw(rt, "spot")
		saved, err := repo.Save(ctx, &spot)
		if err != nil {
			rt.Fatalf("Save: %v", err)
		}

		found, err := repo.FindByID(ctx, saved.ID)
		if err != nil {
			rt.Fatalf("FindByID: %v", err)
		}
		if found == nil {
			rt.Fatalf("saved record %s not found", saved.ID)
		}

		spot.ID = saved.ID
		if !sameSpot(spot, *found) {
			rt.Fatalf("round trip changed record: want %+v got %+v", spot, *found)
		}

		again, err := repo.Save(ctx, found)
		if err != nil {
			rt.Fatalf("second Save: %v", err)
		}
		if !sameSpot(*found, *again) {
			rt.Fatalf("save is not idempotent: %+v vs %+v", *found, *again)
		}
	})
}

func TestPagingCoversStoreProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		conn := openTestDB(rt)
		defer closeTestDB(conn)
		repo := New(conn, lock.NewLocalLocker())
		ctx := context.Background()

		n := rapid.IntRange(0, 15).Draw(rt, "n")
		spots := spottest.ParkingSpots(n).Draw(rt, "spots")
		for i := range spots {
			if _, err := repo.Save(ctx, &spots[i]); err != nil {
				rt.Fatalf("Save: %v", err)
			}
		}

		size := rapid.IntRange(1, 6).Draw(rt, "size")
		field := rapid.SampledFrom([]string{"", "parking_spot_number", "registration_date", "apartment", "block"}).Draw(rt, "sort")
		direction := rapid.SampledFrom([]pagination.Direction{pagination.Asc, pagination.Desc}).Draw(rt, "direction")

		seen := map[uuid.UUID]int{}
		first, err := repo.ListPage(ctx, pagination.Of(0, size).WithSort(field, direction))
		if err != nil {
			rt.Fatalf("ListPage: %v", err)
		}
		if first.TotalElements != int64(n) {
			rt.Fatalf("total %d, want %d", first.TotalElements, n)
		}

		for p := 0; p < first.TotalPages; p++ {
			page, err := repo.ListPage(ctx, pagination.Of(p, size).WithSort(field, direction))
			if err != nil {
				rt.Fatalf("ListPage(%d): %v", p, err)
			}
			if len(page.Content) > size {
				rt.Fatalf("page %d has %d records, size %d", p, len(page.Content), size)
			}
			for _, spot := range page.Content {
				seen[spot.ID]++
			}
		}

		if len(seen) != n {
			rt.Fatalf("paged %d distinct records, want %d", len(seen), n)
		}
		for id, count := range seen {
			if count != 1 {
				rt.Fatalf("record %s returned %d times", id, count)
			}
		}
	})
}
