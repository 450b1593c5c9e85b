package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/db"
	"inventory/internal/model"
)

func TestCreateAndGetItem(t *testing.T) {
	c, database := newTestConn(t)
	ctx := context.Background()
	userID := createTestUser(t, c, "alice")

	id, err := CreateItem(ctx, c, userID, model.ItemInput{
		Name:        "Laptop",
		Description: strPtr("Dell XPS 15"),
		Quantity:    3,
		Unit:        strPtr("pcs"),
	})
	require.NoError(t, err)

	item, err := GetItemByID(ctx, c, id)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", item.Name)
	require.NotNil(t, item.Description)
	assert.Equal(t, "Dell XPS 15", *item.Description)
	assert.EqualValues(t, 3, item.Quantity)
	assert.False(t, item.IsDeleted)

	revs, err := ListItemRevisions(ctx, c, id)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.Equal(t, userID, revs[0].UserID)
	assert.Equal(t, "Laptop", revs[0].Name)
	assert.False(t, revs[0].IsDeleted)
	assert.Equal(t, 1, countRows(t, database, `SELECT COUNT(*) FROM item_revision WHERE item_id = ?`, id))
}

func TestCreateItemNullableFields(t *testing.T) {
	c, _ := newTestConn(t)
	ctx := context.Background()
	userID := createTestUser(t, c, "alice")

	id := createTestItem(t, c, userID, "Cable", 0)
	item, err := GetItemByID(ctx, c, id)
	require.NoError(t, err)
	assert.Nil(t, item.Description)
	assert.Nil(t, item.Unit)
	assert.Zero(t, item.Quantity)
}

func TestCreateItemNegativeQuantity(t *testing.T) {
	c, database := newTestConn(t)
	userID := createTestUser(t, c, "alice")

	_, err := CreateItem(context.Background(), c, userID, model.ItemInput{Name: "x", Quantity: -1})
	var verr *db.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)
	assert.Zero(t, countRows(t, database, `SELECT COUNT(*) FROM item`))
	assert.Zero(t, countRows(t, database, `SELECT COUNT(*) FROM item_revision`))
}

func TestCreateItemEmptyName(t *testing.T) {
	c, _ := newTestConn(t)
	userID := createTestUser(t, c, "alice")

	_, err := CreateItem(context.Background(), c, userID, model.ItemInput{Name: "  ", Quantity: 1})
	var verr *db.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestCreateItemDuplicateName(t *testing.T) {
	c, _ := newTestConn(t)
	userID := createTestUser(t, c, "alice")
	createTestItem(t, c, userID, "Widget", 1)

	_, err := CreateItem(context.Background(), c, userID, model.ItemInput{Name: "Widget", Quantity: 2})
	assert.True(t, db.IsUniqueViolation(err), "got %v", err)
}

func TestCreateItemNameReusableAfterDelete(t *testing.T) {
	c, _ := newTestConn(t)
	ctx := context.Background()
	userID := createTestUser(t, c, "alice")

	id := createTestItem(t, c, userID, "Widget", 1)
	require.NoError(t, UpdateItemDeletionFlagByID(ctx, c, userID, id))

	_, err := CreateItem(ctx, c, userID, model.ItemInput{Name: "Widget", Quantity: 2})
	assert.NoError(t, err)
}

func TestCreateItemRevisionFailureRollsBack(t *testing.T) {
	c, database := newTestConn(t)
	userID := createTestUser(t, c, "alice")
	failInsertsInto(t, database, "item_revision")

	_, err := CreateItem(context.Background(), c, userID, model.ItemInput{Name: "Ghost", Quantity: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "induced failure")
	assert.Zero(t, countRows(t, database, `SELECT COUNT(*) FROM item`))
	assert.False(t, c.InTransaction())
}

func TestGetItemMissing(t *testing.T) {
	c, _ := newTestConn(t)

	_, err := GetItemByID(context.Background(), c, 42)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestUpdateItem(t *testing.T) {
	c, _ := newTestConn(t)
	ctx := context.Background()
	alice := createTestUser(t, c, "alice")
	bob := createTestUser(t, c, "bob")
	id := createTestItem(t, c, alice, "Screws", 100)

	err := UpdateItemByID(ctx, c, bob, id, model.ItemInput{Name: "Screws M4", Quantity: 80, Unit: strPtr("pcs")})
	require.NoError(t, err)

	item, err := GetItemByID(ctx, c, id)
	require.NoError(t, err)
	assert.Equal(t, "Screws M4", item.Name)
	assert.EqualValues(t, 80, item.Quantity)

	revs, err := ListItemRevisions(ctx, c, id)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, "Screws", revs[0].Name)
	assert.Equal(t, "Screws M4", revs[1].Name)
	assert.Equal(t, bob, revs[1].UserID)
	assert.Less(t, revs[0].ID, revs[1].ID)
	assert.False(t, revs[1].CreatedAt.Before(revs[0].CreatedAt))
}

func TestUpdateItemMissing(t *testing.T) {
	c, database := newTestConn(t)
	userID := createTestUser(t, c, "alice")

	err := UpdateItemByID(context.Background(), c, userID, 42, model.ItemInput{Name: "x", Quantity: 1})
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Zero(t, countRows(t, database, `SELECT COUNT(*) FROM item_revision`))
}

func TestUpdateItemNegativeQuantity(t *testing.T) {
	c, database := newTestConn(t)
	ctx := context.Background()
	userID := createTestUser(t, c, "alice")
	id := createTestItem(t, c, userID, "Nails", 5)

	err := UpdateItemByID(ctx, c, userID, id, model.ItemInput{Name: "Nails", Quantity: -5})
	var verr *db.ValidationError
	require.ErrorAs(t, err, &verr)

	item, err := GetItemByID(ctx, c, id)
	require.NoError(t, err)
	assert.EqualValues(t, 5, item.Quantity)
	assert.Equal(t, 1, countRows(t, database, `SELECT COUNT(*) FROM item_revision WHERE item_id = ?`, id))
}

func TestUpdateItemRevisionFailureRollsBack(t *testing.T) {
	c, database := newTestConn(t)
	ctx := context.Background()
	userID := createTestUser(t, c, "alice")
	id := createTestItem(t, c, userID, "Bolts", 10)
	failInsertsInto(t, database, "item_revision")

	err := UpdateItemByID(ctx, c, userID, id, model.ItemInput{Name: "Bolts", Quantity: 3})
	require.Error(t, err)

	item, err := GetItemByID(ctx, c, id)
	require.NoError(t, err)
	assert.EqualValues(t, 10, item.Quantity)
}

func TestUpdateDeletedItem(t *testing.T) {
	c, _ := newTestConn(t)
	ctx := context.Background()
	userID := createTestUser(t, c, "alice")
	id := createTestItem(t, c, userID, "Old", 1)
	require.NoError(t, UpdateItemDeletionFlagByID(ctx, c, userID, id))

	err := UpdateItemByID(ctx, c, userID, id, model.ItemInput{Name: "Old", Quantity: 2})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestSoftDeleteItem(t *testing.T) {
	c, _ := newTestConn(t)
	ctx := context.Background()
	userID := createTestUser(t, c, "alice")
	id, err := CreateItem(ctx, c, userID, model.ItemInput{Name: "Delete Me", Quantity: 7, Unit: strPtr("kg")})
	require.NoError(t, err)

	require.NoError(t, UpdateItemDeletionFlagByID(ctx, c, userID, id))

	items, err := GetAllJoinedItems(ctx, c)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Still fetchable by ID for history.
	item, err := GetItemByID(ctx, c, id)
	require.NoError(t, err)
	assert.True(t, item.IsDeleted)

	revs, err := ListItemRevisions(ctx, c, id)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	last := revs[1]
	assert.True(t, last.IsDeleted)
	assert.Equal(t, "Delete Me", last.Name)
	assert.EqualValues(t, 7, last.Quantity)
	require.NotNil(t, last.Unit)
	assert.Equal(t, "kg", *last.Unit)

	err = UpdateItemDeletionFlagByID(ctx, c, userID, id)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestDeleteItemRevisionFailureRollsBack(t *testing.T) {
	c, database := newTestConn(t)
	ctx := context.Background()
	userID := createTestUser(t, c, "alice")
	id := createTestItem(t, c, userID, "Keep", 1)
	failInsertsInto(t, database, "item_revision")

	require.Error(t, UpdateItemDeletionFlagByID(ctx, c, userID, id))

	item, err := GetItemByID(ctx, c, id)
	require.NoError(t, err)
	assert.False(t, item.IsDeleted)
}

func TestConcurrentDeleteRecordsOneRevision(t *testing.T) {
	c, database := newTestConn(t)
	userID := createTestUser(t, c, "alice")
	id := createTestItem(t, c, userID, "Contested", 1)

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := db.NewConn(database)
			defer conn.Release()
			errs[i] = UpdateItemDeletionFlagByID(context.Background(), conn, userID, id)
		}()
	}
	wg.Wait()

	var ok, notFound int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, db.ErrNotFound):
			notFound++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, notFound)
	assert.Equal(t, 1, countRows(t, database,
		`SELECT COUNT(*) FROM item_revision WHERE item_id = ? AND is_deleted = 1`, id))
}

func TestItemImage(t *testing.T) {
	c, database := newTestConn(t)
	ctx := context.Background()
	userID := createTestUser(t, c, "alice")
	id := createTestItem(t, c, userID, "Photo Item", 1)

	err := SetItemImage(ctx, c, &model.ItemImage{ItemID: id, Data: []byte("first"), Mime: "image/jpeg", Width: 10, Height: 5})
	require.NoError(t, err)
	err = SetItemImage(ctx, c, &model.ItemImage{ItemID: id, Data: []byte("second"), Mime: "image/jpeg", Width: 20, Height: 10})
	require.NoError(t, err)

	img, err := GetItemImage(ctx, c, id)
	require.NoError(t, err)
	assert.Equal(t, "second", string(img.Data))
	assert.Equal(t, "image/jpeg", img.Mime)
	assert.Equal(t, 20, img.Width)

	// Photos are not revisioned.
	assert.Equal(t, 1, countRows(t, database, `SELECT COUNT(*) FROM item_revision WHERE item_id = ?`, id))
}

func TestItemImageMissingItem(t *testing.T) {
	c, _ := newTestConn(t)
	ctx := context.Background()

	err := SetItemImage(ctx, c, &model.ItemImage{ItemID: 99, Data: []byte("x"), Mime: "image/jpeg"})
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = GetItemImage(ctx, c, 99)
	assert.ErrorIs(t, err, db.ErrNotFound)
}
