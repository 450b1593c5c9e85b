package store

import (
	"context"
	"strings"
	"time"

	"inventory/internal/db"
	"inventory/internal/model"
)

var (
	insertItem = db.Statement{
		Name: "inserting item",
		Mode: db.Mutate,
		SQL:  `INSERT INTO item (name, description, quantity, unit) VALUES (?, ?, ?, ?)`,
	}
	selectItemByID = db.Statement{
		Name: "getting item",
		Mode: db.One,
		SQL: `SELECT id, name, description, quantity, unit, is_deleted
		      FROM item WHERE id = ?`,
	}
	updateItem = db.Statement{
		Name: "updating item",
		Mode: db.Mutate,
		SQL: `UPDATE item SET name = ?, description = ?, quantity = ?, unit = ?
		      WHERE id = ? AND is_deleted = 0`,
	}
	// flagItemDeleted flips the flag and returns the pre-delete snapshot in
	// one statement, so no other writer can slip in between read and write.
	flagItemDeleted = db.Statement{
		Name: "deleting item",
		Mode: db.One,
		SQL: `UPDATE item SET is_deleted = 1
		      WHERE id = ? AND is_deleted = 0
		      RETURNING name, description, quantity, unit`,
	}
	upsertItemImage = db.Statement{
		Name: "setting item image",
		Mode: db.Mutate,
		SQL: `INSERT INTO item_image (item_id, data, mime, width, height, updated_at)
		      SELECT ?, ?, ?, ?, ?, ?
		      WHERE EXISTS (SELECT 1 FROM item WHERE id = ? AND is_deleted = 0)
		      ON CONFLICT (item_id) DO UPDATE SET
		          data = excluded.data,
		          mime = excluded.mime,
		          width = excluded.width,
		          height = excluded.height,
		          updated_at = excluded.updated_at`,
	}
	selectItemImage = db.Statement{
		Name: "getting item image",
		Mode: db.One,
		SQL: `SELECT item_id, data, mime, width, height, updated_at
		      FROM item_image WHERE item_id = ?`,
	}
)

func validateItem(in model.ItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return db.Validation("name", "must not be empty")
	}
	if in.Quantity < 0 {
		return db.Validation("quantity", "must not be negative, got %d", in.Quantity)
	}
	return nil
}

// CreateItem inserts an item and its first revision in one transaction.
func CreateItem(ctx context.Context, c *db.Conn, userID int64, in model.ItemInput) (int64, error) {
	if err := validateItem(in); err != nil {
		return 0, err
	}

	var id int64
	err := c.Transaction(ctx, func() error {
		res, err := c.Mutate(ctx, insertItem, in.Name, in.Description, in.Quantity, in.Unit)
		if err != nil {
			return err
		}
		id = res.LastInsertID

		_, err = RecordItemRevision(ctx, c, userID, id, in, false)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetItemByID returns an item by ID. Soft-deleted items are returned as well,
// with IsDeleted set, so their history stays reachable.
func GetItemByID(ctx context.Context, c *db.Conn, id int64) (*model.Item, error) {
	item := &model.Item{}
	if err := c.One(ctx, selectItemByID, item, id); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemByID overwrites an active item's fields and records a revision.
// It returns db.ErrNotFound when the item is missing or soft-deleted.
func UpdateItemByID(ctx context.Context, c *db.Conn, userID, itemID int64, in model.ItemInput) error {
	if err := validateItem(in); err != nil {
		return err
	}

	return c.Transaction(ctx, func() error {
		res, err := c.Mutate(ctx, updateItem, in.Name, in.Description, in.Quantity, in.Unit, itemID)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return db.ErrNotFound
		}

		_, err = RecordItemRevision(ctx, c, userID, itemID, in, false)
		return err
	})
}

// UpdateItemDeletionFlagByID soft-deletes an item and records a revision
// carrying its last field values. Deleting an item twice returns db.ErrNotFound.
func UpdateItemDeletionFlagByID(ctx context.Context, c *db.Conn, userID, itemID int64) error {
	return c.Transaction(ctx, func() error {
		var snap model.ItemInput
		if err := c.One(ctx, flagItemDeleted, &snap, itemID); err != nil {
			return err
		}

		_, err := RecordItemRevision(ctx, c, userID, itemID, snap, true)
		return err
	})
}

// SetItemImage stores the photo of an active item, replacing any previous one.
// Photos are not revisioned.
func SetItemImage(ctx context.Context, c *db.Conn, img *model.ItemImage) error {
	res, err := c.Mutate(ctx, upsertItemImage,
		img.ItemID, img.Data, img.Mime, img.Width, img.Height, time.Now().UTC(),
		img.ItemID,
	)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}

// GetItemImage returns an item's photo.
func GetItemImage(ctx context.Context, c *db.Conn, itemID int64) (*model.ItemImage, error) {
	img := &model.ItemImage{}
	if err := c.One(ctx, selectItemImage, img, itemID); err != nil {
		return nil, err
	}
	return img, nil
}
