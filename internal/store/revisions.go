package store

import (
	"context"
	"fmt"
	"time"

	"inventory/internal/db"
	"inventory/internal/model"
)

var (
	insertItemRevision = db.Statement{
		Name: "inserting item revision",
		Mode: db.Mutate,
		SQL: `INSERT INTO item_revision
		      (user_id, created_at, item_id, name, description, quantity, unit, is_deleted)
		      VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	}
	insertCommentRevision = db.Statement{
		Name: "inserting comment revision",
		Mode: db.Mutate,
		SQL: `INSERT INTO item_comment_revision
		      (user_id, created_at, item_comment_id, text, is_deleted)
		      VALUES (?, ?, ?, ?, ?)`,
	}
	selectItemRevisions = db.Statement{
		Name: "listing item revisions",
		Mode: db.All,
		SQL: `SELECT id, user_id, created_at, item_id, name, description, quantity, unit, is_deleted
		      FROM item_revision WHERE item_id = ? ORDER BY id`,
	}
	selectCommentRevisions = db.Statement{
		Name: "listing comment revisions",
		Mode: db.All,
		SQL: `SELECT id, user_id, created_at, item_comment_id, text, is_deleted
		      FROM item_comment_revision WHERE item_comment_id = ? ORDER BY id`,
	}
)

// RecordItemRevision appends a snapshot of an item authored by userID.
// It joins the caller's transaction, so a failure here undoes the change
// being recorded.
func RecordItemRevision(ctx context.Context, c *db.Conn, userID, itemID int64, snap model.ItemInput, isDeleted bool) (int64, error) {
	var id int64
	err := c.Transaction(ctx, func() error {
		res, err := c.Mutate(ctx, insertItemRevision,
			userID, time.Now().UTC(), itemID,
			snap.Name, snap.Description, snap.Quantity, snap.Unit, isDeleted,
		)
		if err != nil {
			return err
		}
		id = res.LastInsertID
		return nil
	})
	return id, err
}

// RecordCommentRevision appends a snapshot of a comment authored by userID.
func RecordCommentRevision(ctx context.Context, c *db.Conn, userID, commentID int64, text string, isDeleted bool) (int64, error) {
	var id int64
	err := c.Transaction(ctx, func() error {
		res, err := c.Mutate(ctx, insertCommentRevision,
			userID, time.Now().UTC(), commentID, text, isDeleted,
		)
		if err != nil {
			return err
		}
		id = res.LastInsertID
		return nil
	})
	return id, err
}

// ListItemRevisions returns an item's revisions in the order they were written.
func ListItemRevisions(ctx context.Context, c *db.Conn, itemID int64) ([]model.ItemRevision, error) {
	revs := []model.ItemRevision{}
	if err := c.All(ctx, selectItemRevisions, &revs, itemID); err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, fmt.Errorf("item %d revisions: %w", itemID, db.ErrNotFound)
	}
	return revs, nil
}

// ListCommentRevisions returns a comment's revisions in the order they were written.
func ListCommentRevisions(ctx context.Context, c *db.Conn, commentID int64) ([]model.ItemCommentRevision, error) {
	revs := []model.ItemCommentRevision{}
	if err := c.All(ctx, selectCommentRevisions, &revs, commentID); err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, fmt.Errorf("comment %d revisions: %w", commentID, db.ErrNotFound)
	}
	return revs, nil
}
