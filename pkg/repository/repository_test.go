package repository

import (
	"context"
	"testing"

	"github.com/smallbiznis/parkingcontrol/pkg/db"
	"github.com/smallbiznis/parkingcontrol/pkg/db/option"
	"github.com/smallbiznis/parkingcontrol/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Name  string `gorm:"size:32;not null"`
	Color string `gorm:"size:32"`
}

func newTestStore(t *testing.T) (Repository[widget], *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return ProvideStore[widget](conn), conn
}

func TestUpdateReplacesEveryColumn(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &widget{ID: 1, Name: "bolt", Color: "red"}))
	require.NoError(t, store.Create(ctx, &widget{ID: 2, Name: "gear", Color: "blue"}))

	affected, err := store.Update(ctx, &widget{ID: 1, Name: "nut", Color: ""})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	found, err := store.FindOne(ctx, nil, option.Where("id = ?", 1))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, widget{ID: 1, Name: "nut", Color: ""}, *found)

	other, err := store.FindOne(ctx, nil, option.Where("id = ?", 2))
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.Equal(t, widget{ID: 2, Name: "gear", Color: "blue"}, *other)
}

func TestUpdateMissingRowAffectsNothing(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	affected, err := store.Update(ctx, &widget{ID: 3, Name: "nut"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	count, err := store.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestUpdateRequiresPrimaryKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &widget{ID: 1, Name: "bolt"}))

	_, err := store.Update(ctx, &widget{Name: "nut"})
	assert.ErrorIs(t, err, gorm.ErrMissingWhereClause)

	found, err := store.FindOne(ctx, nil, option.Where("id = ?", 1))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "bolt", found.Name)
}

func TestFindOneMissingReturnsNil(t *testing.T) {
	store, _ := newTestStore(t)

	found, err := store.FindOne(context.Background(), nil, option.Where("id = ?", 42))
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestExistsMatchesZeroValuesThroughWhere(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &widget{ID: 1, Name: "bolt", Color: "red"}))

	exists, err := store.Exists(ctx, nil, option.Where("color = ?", ""))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.Exists(ctx, &widget{Name: "bolt"})
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFindPage(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	for i := int64(1); i <= 7; i++ {
		require.NoError(t, store.Create(ctx, &widget{ID: i, Name: "w"}))
	}

	page, err := store.FindPage(ctx, nil, pagination.Of(1, 3), option.OrderBy("id", true))
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Content, 3)
	assert.Equal(t, []int64{4, 3, 2}, []int64{page.Content[0].ID, page.Content[1].ID, page.Content[2].ID})

	last, err := store.FindPage(ctx, nil, pagination.Of(2, 3), option.OrderBy("id", false))
	require.NoError(t, err)
	require.Len(t, last.Content, 1)
	assert.Equal(t, int64(7), last.Content[0].ID)

	_, err = store.FindPage(ctx, nil, pagination.Of(0, 0))
	assert.ErrorIs(t, err, pagination.ErrInvalidPageRequest)
}

func TestDeleteReportsRowsAffected(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &widget{ID: 9, Name: "gear"}))

	affected, err := store.Delete(ctx, int64(9))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = store.Delete(ctx, int64(9))
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestWithTrxRollsBack(t *testing.T) {
	store, conn := newTestStore(t)
	ctx := context.Background()

	_ = conn.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, store.WithTrx(tx).Create(ctx, &widget{ID: 5, Name: "spring"}))
		return gorm.ErrInvalidTransaction
	})

	exists, err := store.Exists(ctx, &widget{ID: 5})
	require.NoError(t, err)
	assert.False(t, exists)
}
