package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"inventory/internal/db"
	"inventory/internal/model"
)

// joinedRow is one row of the item × tag × comment fan-out. Tag and comment
// columns are NULL when the outer join found nothing.
type joinedRow struct {
	ID               int64   `db:"id"`
	Name             string  `db:"name"`
	Description      *string `db:"description"`
	Quantity         int64   `db:"quantity"`
	Unit             *string `db:"unit"`
	IsDeleted        bool    `db:"is_deleted"`
	ItemRevisions    int64   `db:"item_revisions"`
	TagID            *int64  `db:"tag_id"`
	TagName          *string `db:"tag_name"`
	CommentID        *int64  `db:"comment_id"`
	CommentUserID    *int64  `db:"comment_user_id"`
	CommentText      *string `db:"comment_text"`
	CommentRevisions int64   `db:"comment_revisions"`
}

// joinedItemsQuery selects items with their tags and live comments, ordered
// so that all rows of one item are contiguous.
func joinedItemsQuery() sq.SelectBuilder {
	return sq.Select(
		"i.id AS id",
		"i.name AS name",
		"i.description AS description",
		"i.quantity AS quantity",
		"i.unit AS unit",
		"i.is_deleted AS is_deleted",
		"(SELECT COUNT(*) FROM item_revision r WHERE r.item_id = i.id) AS item_revisions",
		"t.id AS tag_id",
		"t.name AS tag_name",
		"c.id AS comment_id",
		"c.user_id AS comment_user_id",
		"c.text AS comment_text",
		"(SELECT COUNT(*) FROM item_comment_revision cr WHERE cr.item_comment_id = c.id) AS comment_revisions",
	).
		From("item i").
		LeftJoin("item_tag_junction j ON j.item_id = i.id").
		LeftJoin("item_tag t ON t.id = j.item_tag_id").
		LeftJoin("item_comment c ON c.item_id = i.id AND c.is_deleted = 0").
		OrderBy("i.id", "t.id", "c.id")
}

func selectJoined(ctx context.Context, c *db.Conn, name string, q sq.SelectBuilder) ([]joinedRow, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", name, err)
	}

	var rows []joinedRow
	stmt := db.Statement{Name: name, Mode: db.All, SQL: query}
	if err := c.All(ctx, stmt, &rows, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// groupJoinedRows folds the fan-out back into one JoinedItem per item. Rows
// must be ordered by item ID. Tags and comments keep the order in which they
// first appear; NULL placeholders from the outer joins are dropped.
func groupJoinedRows(rows []joinedRow) []model.JoinedItem {
	items := []model.JoinedItem{}

	var (
		cur          *model.JoinedItem
		seenTags     map[int64]bool
		seenComments map[int64]bool
	)
	for _, r := range rows {
		if cur == nil || cur.ID != r.ID {
			items = append(items, model.JoinedItem{
				Item: model.Item{
					ID:          r.ID,
					Name:        r.Name,
					Description: r.Description,
					Quantity:    r.Quantity,
					Unit:        r.Unit,
					IsDeleted:   r.IsDeleted,
				},
				Tags:         []model.ItemTag{},
				Comments:     []model.JoinedComment{},
				HasRevisions: r.ItemRevisions > 1,
			})
			cur = &items[len(items)-1]
			seenTags = map[int64]bool{}
			seenComments = map[int64]bool{}
		}

		if r.TagID != nil && !seenTags[*r.TagID] {
			seenTags[*r.TagID] = true
			tag := model.ItemTag{ID: *r.TagID}
			if r.TagName != nil {
				tag.Name = *r.TagName
			}
			cur.Tags = append(cur.Tags, tag)
		}

		if r.CommentID != nil && !seenComments[*r.CommentID] {
			seenComments[*r.CommentID] = true
			comment := model.JoinedComment{
				ItemComment:  model.ItemComment{ID: *r.CommentID, ItemID: r.ID},
				HasRevisions: r.CommentRevisions > 1,
			}
			if r.CommentUserID != nil {
				comment.UserID = *r.CommentUserID
			}
			if r.CommentText != nil {
				comment.Text = *r.CommentText
			}
			cur.Comments = append(cur.Comments, comment)
		}
	}

	return items
}

// GetJoinedItemByID returns one item with its tags and comments. Soft-deleted
// items are included.
func GetJoinedItemByID(ctx context.Context, c *db.Conn, id int64) (*model.JoinedItem, error) {
	rows, err := selectJoined(ctx, c, "getting joined item", joinedItemsQuery().Where(sq.Eq{"i.id": id}))
	if err != nil {
		return nil, err
	}

	items := groupJoinedRows(rows)
	if len(items) == 0 {
		return nil, fmt.Errorf("item %d: %w", id, db.ErrNotFound)
	}
	return &items[0], nil
}

// GetAllJoinedItems returns every active item with its tags and comments.
func GetAllJoinedItems(ctx context.Context, c *db.Conn) ([]model.JoinedItem, error) {
	rows, err := selectJoined(ctx, c, "listing joined items", joinedItemsQuery().Where(sq.Eq{"i.is_deleted": 0}))
	if err != nil {
		return nil, err
	}
	return groupJoinedRows(rows), nil
}
