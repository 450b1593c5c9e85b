package store

import (
	"context"
	"errors"
	"strings"

	"inventory/internal/db"
	"inventory/internal/model"
)

var (
	selectTagByName = db.Statement{
		Name: "getting tag",
		Mode: db.One,
		SQL:  `SELECT id, name FROM item_tag WHERE name = ?`,
	}
	insertTag = db.Statement{
		Name: "inserting tag",
		Mode: db.Mutate,
		SQL:  `INSERT INTO item_tag (name) VALUES (?)`,
	}
	selectAllTags = db.Statement{
		Name: "listing tags",
		Mode: db.All,
		SQL:  `SELECT id, name FROM item_tag ORDER BY id`,
	}
	insertTagAssociation = db.Statement{
		Name: "associating tag",
		Mode: db.Mutate,
		SQL:  `INSERT INTO item_tag_junction (item_id, item_tag_id) VALUES (?, ?)`,
	}
	deleteTagAssociation = db.Statement{
		Name: "removing tag association",
		Mode: db.Mutate,
		SQL:  `DELETE FROM item_tag_junction WHERE item_id = ? AND item_tag_id = ?`,
	}
)

// GetItemTagByName returns the tag with the given name.
func GetItemTagByName(ctx context.Context, c *db.Conn, name string) (*model.ItemTag, error) {
	tag := &model.ItemTag{}
	if err := c.One(ctx, selectTagByName, tag, name); err != nil {
		return nil, err
	}
	return tag, nil
}

// CreateItemTag returns the ID of the tag with the given name, creating it if
// needed. Calling it repeatedly with one name always yields the same ID.
func CreateItemTag(ctx context.Context, c *db.Conn, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, db.Validation("name", "must not be empty")
	}

	tag, err := GetItemTagByName(ctx, c, name)
	if err == nil {
		return tag.ID, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return 0, err
	}

	res, err := c.Mutate(ctx, insertTag, name)
	if err == nil {
		return res.LastInsertID, nil
	}
	if !db.IsUniqueViolation(err) {
		return 0, err
	}

	// Another writer created it between the lookup and the insert.
	tag, err = GetItemTagByName(ctx, c, name)
	if err != nil {
		return 0, err
	}
	return tag.ID, nil
}

// CreateItemTagAssociation links a tag to an item. A missing item or tag
// surfaces as a foreign key *db.IntegrityError and an existing link as a
// unique one.
func CreateItemTagAssociation(ctx context.Context, c *db.Conn, itemID, tagID int64) error {
	_, err := c.Mutate(ctx, insertTagAssociation, itemID, tagID)
	return err
}

// DeleteItemTagAssociation unlinks a tag from an item.
func DeleteItemTagAssociation(ctx context.Context, c *db.Conn, itemID, tagID int64) error {
	res, err := c.Mutate(ctx, deleteTagAssociation, itemID, tagID)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}

// GetAllItemTags returns every tag ordered by ID.
func GetAllItemTags(ctx context.Context, c *db.Conn) ([]model.ItemTag, error) {
	tags := []model.ItemTag{}
	if err := c.All(ctx, selectAllTags, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
