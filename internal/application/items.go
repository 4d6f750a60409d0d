package application

import (
	"context"
	"errors"
	"strings"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/atvirokodosprendimai/assettrack/internal/logging"
	"github.com/atvirokodosprendimai/assettrack/internal/metrics"
)

type ItemInput struct {
	UserID       string `json:"User_ID" validate:"notblank"`
	EquipeID     string `json:"Equipe_ID" validate:"notblank"`
	SerialNumber string `json:"Serial_Number" validate:"notblank"`
	CreateDate   string `json:"Item_CreateDate"`
	Status       string `json:"Item_Status" validate:"notblank"`
	Others       string `json:"Item_Others" validate:"required"`
	ObjectID     string `json:"Object_ID" validate:"notblank"`
}

type ItemUpdateInput struct {
	SerialNumber *string `json:"Serial_Number"`
	CreateDate   *string `json:"Item_CreateDate"`
	Status       string  `json:"Item_Status" validate:"notblank"`
	ObjectID     string  `json:"Object_ID" validate:"notblank"`
	Others       string  `json:"Item_Others"`
}

type StatusChangeInput struct {
	UserID     string `json:"User_ID"`
	EquipeID   string `json:"Equipe_ID"`
	ItemID     string `json:"Item_ID" validate:"notblank"`
	ObjectID   string `json:"Object_ID"`
	CreateDate string `json:"Item_history_CreateDate"`
	Other      string `json:"Item_history_Other"`
	Status     string `json:"Item_history_Status" validate:"notblank"`
}

// PlaceItemInput adds a new serialized item straight into an object slot.
type PlaceItemInput struct {
	UserID       string `json:"User_ID" validate:"notblank"`
	EquipeID     string `json:"Equipe_ID" validate:"notblank"`
	SerialNumber string `json:"Serial_Number" validate:"notblank"`
	Status       string `json:"Item_Status"`
	Others       string `json:"Item_Others"`
}

func (s *InventoryService) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	return s.repo.ListItems(ctx, filter)
}

func (s *InventoryService) ListItemsByEquipment(ctx context.Context, equipeID string) ([]domain.PlacedItem, error) {
	return s.repo.ListItemsByEquipment(ctx, equipeID)
}

func (s *InventoryService) SearchItems(ctx context.Context, filter domain.ItemSearch) ([]domain.PlacedItem, error) {
	return s.repo.SearchItems(ctx, filter)
}

func (s *InventoryService) ListItemsByObject(ctx context.Context, objectID string) ([]domain.ObjectItem, error) {
	return s.repo.ListItemsByObject(ctx, objectID)
}

func (s *InventoryService) ItemHistory(ctx context.Context, itemID string) ([]domain.HistoryRecord, error) {
	return s.repo.ListHistory(ctx, itemID)
}

// Suggest returns up to SuggestionLimit distinct values of field containing term.
func (s *InventoryService) Suggest(ctx context.Context, field domain.SuggestField, term string) ([]string, error) {
	if strings.TrimSpace(string(field)) == "" || strings.TrimSpace(term) == "" {
		return []string{}, domain.Validation("type and search are required")
	}
	return s.repo.Suggest(ctx, field, term, SuggestionLimit)
}

func (s *InventoryService) CreateItem(ctx context.Context, in ItemInput) (string, error) {
	if err := check(in); err != nil {
		return "", err
	}

	item := domain.Item{
		UserID:       in.UserID,
		EquipeID:     in.EquipeID,
		SerialNumber: strings.TrimSpace(in.SerialNumber),
		CreateDate:   defaultString(in.CreateDate, s.timestamp()),
		Status:       in.Status,
		Others:       in.Others,
		ObjectID:     in.ObjectID,
	}
	err := s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		if err := objectMustExist(ctx, tx, item.ObjectID); err != nil {
			return err
		}
		id, err := allocate(ctx, tx, domain.ItemSeq)
		if err != nil {
			return err
		}
		item.ItemID = id
		return tx.CreateItem(ctx, item)
	})
	if err != nil {
		return "", err
	}
	return item.ItemID, nil
}

// PlaceItem creates an item inside objectID. Serial numbers are unique.
func (s *InventoryService) PlaceItem(ctx context.Context, objectID string, in PlaceItemInput) (string, error) {
	if err := check(in); err != nil {
		return "", err
	}

	item := domain.Item{
		UserID:       in.UserID,
		EquipeID:     in.EquipeID,
		SerialNumber: strings.TrimSpace(in.SerialNumber),
		CreateDate:   s.timestamp(),
		Status:       defaultString(in.Status, domain.DefaultItemStatus),
		Others:       in.Others,
		ObjectID:     objectID,
	}
	err := s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		if _, err := tx.GetObject(ctx, objectID); err != nil {
			return err
		}
		taken, err := tx.SerialNumberTaken(ctx, item.SerialNumber)
		if err != nil {
			return err
		}
		if taken {
			return domain.Duplicate("serial number %s already exists", item.SerialNumber)
		}
		id, err := allocate(ctx, tx, domain.ItemSeq)
		if err != nil {
			return err
		}
		item.ItemID = id
		return tx.CreateItem(ctx, item)
	})
	if err != nil {
		return "", err
	}
	return item.ItemID, nil
}

// UpdateItem rewrites an item and records a history entry when its status changes.
func (s *InventoryService) UpdateItem(ctx context.Context, itemID string, in ItemUpdateInput) (domain.StatusChangeResult, error) {
	if err := check(in); err != nil {
		return domain.StatusChangeResult{}, err
	}
	return s.ApplyStatusChange(ctx, domain.StatusChange{
		ItemID:       itemID,
		ObjectID:     in.ObjectID,
		Relocate:     true,
		SerialNumber: in.SerialNumber,
		CreateDate:   in.CreateDate,
		Status:       in.Status,
		Others:       in.Others,
	})
}

func (s *InventoryService) ChangeStatus(ctx context.Context, in StatusChangeInput) (domain.StatusChangeResult, error) {
	if err := check(in); err != nil {
		return domain.StatusChangeResult{}, err
	}
	return s.ApplyStatusChange(ctx, domain.StatusChange{
		ItemID:   in.ItemID,
		UserID:   in.UserID,
		EquipeID: in.EquipeID,
		ObjectID: in.ObjectID,
		Status:   in.Status,
		Others:   in.Other,
	})
}

// ApplyStatusChange is the audit trail. An unchanged status only updates the
// other fields. A changed status mints an S id and writes the history row
// and the item update in one transaction.
func (s *InventoryService) ApplyStatusChange(ctx context.Context, change domain.StatusChange) (domain.StatusChangeResult, error) {
	var result domain.StatusChangeResult
	err := s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		if change.ObjectID != "" {
			if err := objectMustExist(ctx, tx, change.ObjectID); err != nil {
				return err
			}
		}
		current, err := tx.GetItem(ctx, change.ItemID)
		if err != nil {
			return err
		}

		next := current
		next.Status = change.Status
		next.Others = change.Others
		if change.Relocate && change.ObjectID != "" {
			next.ObjectID = change.ObjectID
		}
		if change.SerialNumber != nil {
			next.SerialNumber = *change.SerialNumber
		}
		if change.CreateDate != nil {
			next.CreateDate = *change.CreateDate
		}

		if current.Status != change.Status {
			statusID, err := allocate(ctx, tx, domain.HistorySeq)
			if err != nil {
				return err
			}
			entry := domain.HistoryEntry{
				StatusID:   statusID,
				UserID:     defaultString(change.UserID, current.UserID),
				EquipeID:   defaultString(change.EquipeID, current.EquipeID),
				ItemID:     current.ItemID,
				ObjectID:   defaultString(change.ObjectID, current.ObjectID),
				CreateDate: s.timestamp(),
				Other:      change.Others,
				Status:     change.Status,
			}
			if err := tx.CreateHistory(ctx, entry); err != nil {
				return err
			}
			result = domain.StatusChangeResult{Changed: true, StatusID: statusID}
		}

		return tx.UpdateItem(ctx, next)
	})
	if err != nil {
		return domain.StatusChangeResult{}, err
	}

	metrics.RecordStatusChange(result.Changed, change.Status)
	if result.Changed {
		logging.Ctx(ctx).Info().
			Str("item_id", change.ItemID).
			Str("status", change.Status).
			Str("status_id", result.StatusID).
			Msg("item status changed")
	}
	return result, nil
}

// DeleteItem removes an item together with its history.
func (s *InventoryService) DeleteItem(ctx context.Context, itemID string) error {
	return s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		if _, err := tx.GetItem(ctx, itemID); err != nil {
			return err
		}
		if _, err := tx.DeleteHistory(ctx, itemID); err != nil {
			return err
		}
		ok, err := tx.DeleteItem(ctx, itemID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("Item %s not found", itemID)
		}
		return nil
	})
}

func objectMustExist(ctx context.Context, repo domain.InventoryRepository, objectID string) error {
	if _, err := repo.GetObject(ctx, objectID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Referential("referenced location not found: %s", objectID)
		}
		return err
	}
	return nil
}
