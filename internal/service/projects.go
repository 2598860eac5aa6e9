package service

import (
	"context"

	"planner/internal/models"
	"planner/internal/repository"
	"planner/pkg/logger"
)

// CreateChild appends a new item under parentID.
func (s *Items) CreateChild(ctx context.Context, userID, parentID, text string, typ models.ItemType) (string, error) {
	if parentID == "" {
		return "", invalid("parent id must not be empty")
	}
	return s.Create(ctx, userID, CreateInput{Text: text, Type: typ, ParentID: &parentID})
}

// ListChildren returns the children of an owned parent in list order.
func (s *Items) ListChildren(ctx context.Context, userID, parentID string) ([]models.Item, error) {
	r := s.store.Repo()
	if _, err := owned(ctx, r, userID, parentID); err != nil {
		return nil, err
	}
	return r.UserChildren(ctx, userID, parentID)
}

// DeleteProject removes an item together with all of its descendants. Only the
// root's own sibling group is repaired afterwards; the deleted levels vanish
// whole.
func (s *Items) DeleteProject(ctx context.Context, userID, id string) (models.DeleteResult, error) {
	var (
		root    *models.Item
		res     models.DeleteResult
		removed int
	)
	err := s.store.InTx(ctx, func(r *repository.Repo) error {
		var err error
		if root, err = owned(ctx, r, userID, id); err != nil {
			return err
		}
		visited := map[string]bool{root.ID: true}
		if removed, err = deleteDescendants(ctx, r, root.ID, visited); err != nil {
			return err
		}
		if date := root.Date(); date != "" {
			if err := leaveDay(ctx, r, userID, date, root.ID); err != nil {
				return err
			}
		}
		if err := r.DeleteItem(ctx, root.ID); err != nil {
			return err
		}
		res, err = repairAfterRemoval(ctx, r, root)
		return err
	})
	if err != nil {
		return models.DeleteResult{}, err
	}
	logger.Debug(ctx, "Project deleted", "item_id", id, "descendants", removed, "updated", res.UpdatedCount)
	s.notify.Notify(ctx, event(models.ActionDeleted, root))
	return res, nil
}

// deleteDescendants walks the parent index depth first and deletes every item
// below parentID. visited stops the walk from revisiting an id, so a corrupt
// parent cycle terminates instead of recursing forever.
func deleteDescendants(ctx context.Context, r *repository.Repo, parentID string, visited map[string]bool) (int, error) {
	children, err := r.Children(ctx, parentID)
	if err != nil {
		return 0, err
	}
	removed := 0
	for i := range children {
		child := &children[i]
		if visited[child.ID] {
			logger.Warn(ctx, "Parent cycle detected during subtree delete", "item_id", child.ID, "parent_id", parentID)
			continue
		}
		visited[child.ID] = true

		n, err := deleteDescendants(ctx, r, child.ID, visited)
		if err != nil {
			return removed, err
		}
		removed += n
		if date := child.Date(); date != "" {
			if err := leaveDay(ctx, r, child.UserID, date, child.ID); err != nil {
				return removed, err
			}
		}
		if err := r.DeleteItem(ctx, child.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
