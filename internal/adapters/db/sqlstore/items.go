package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

func (r *Repository) CreateItem(ctx context.Context, value domain.Item) error {
	m := itemModel(value)
	return classify(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *Repository) GetItem(ctx context.Context, itemID string) (domain.Item, error) {
	var m ItemModel
	if err := r.db.WithContext(ctx).Where("item_id = ?", itemID).First(&m).Error; err != nil {
		return domain.Item{}, notFound(err, "Item %s not found", itemID)
	}
	return m.toDomain(), nil
}

func (r *Repository) UpdateItem(ctx context.Context, value domain.Item) error {
	res := r.db.WithContext(ctx).Model(&ItemModel{}).Where("item_id = ?", value.ItemID).Updates(map[string]any{
		"serial_number":   value.SerialNumber,
		"item_createdate": value.CreateDate,
		"item_status":     value.Status,
		"item_others":     value.Others,
		"object_id":       value.ObjectID,
	})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("Item %s not found", value.ItemID)
	}
	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, itemID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("item_id = ?", itemID).Delete(&ItemModel{})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) SerialNumberTaken(ctx context.Context, serial string) (bool, error) {
	return exists(ctx, r.db, &ItemModel{}, "serial_number = ?", serial)
}

func (r *Repository) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	q := r.db.WithContext(ctx).Model(&ItemModel{})
	if v := strings.TrimSpace(filter.ItemID); v != "" {
		q = q.Where("item_id = ?", v)
	}
	if v := strings.TrimSpace(filter.SerialNumber); v != "" {
		q = q.Where("serial_number = ?", v)
	}
	if v := strings.TrimSpace(filter.CreateDate); v != "" {
		q = q.Where("item_createdate = ?", v)
	}
	if v := strings.TrimSpace(filter.Status); v != "" {
		q = q.Where("item_status = ?", v)
	}

	rows := make([]ItemModel, 0)
	if err := q.Order("item_id").Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	result := make([]domain.Item, 0, len(rows))
	for _, m := range rows {
		result = append(result, m.toDomain())
	}
	return result, nil
}

type placedRow struct {
	ItemModel
	NodeID         string
	RoomID         string
	BranchLocation string
	BuildingName   string
	RoomName       string
}

func (p placedRow) toDomain() domain.PlacedItem {
	return domain.PlacedItem{
		Item:           p.ItemModel.toDomain(),
		NodeID:         p.NodeID,
		RoomID:         p.RoomID,
		BranchLocation: p.BranchLocation,
		BuildingName:   p.BuildingName,
		RoomName:       p.RoomName,
	}
}

const placedSelect = `
	SELECT i.item_id, i.user_id, i.equipe_id, i.serial_number, i.item_createdate, i.item_status, i.item_others,
		i.object_id, o.node_id, o.room_id,
		n.node_location AS branch_location, n.node_name AS building_name, rm.room_name
	FROM item i
	JOIN object o ON i.object_id = o.object_id
	JOIN node n ON o.node_id = n.node_id
	JOIN room rm ON o.room_id = rm.room_id`

func (r *Repository) ListItemsByEquipment(ctx context.Context, equipeID string) ([]domain.PlacedItem, error) {
	rows := make([]placedRow, 0)
	if err := r.db.WithContext(ctx).Raw(placedSelect+" WHERE i.equipe_id = ? ORDER BY i.item_id", equipeID).Scan(&rows).Error; err != nil {
		return nil, classify(err)
	}
	return placedItems(rows), nil
}

func (r *Repository) SearchItems(ctx context.Context, filter domain.ItemSearch) ([]domain.PlacedItem, error) {
	conds := make([]string, 0, 5)
	args := make([]any, 0, 5)
	for _, f := range []struct{ col, val string }{
		{"i.serial_number", filter.SerialNumber},
		{"n.node_name", filter.NodeName},
		{"rm.room_name", filter.RoomName},
		{"o.object_name", filter.ObjectName},
	} {
		if strings.TrimSpace(f.val) != "" {
			conds = append(conds, f.col+" LIKE ?")
			args = append(args, like(f.val))
		}
	}
	if v := strings.TrimSpace(filter.Status); v != "" {
		conds = append(conds, "i.item_status = ?")
		args = append(args, v)
	}

	q := placedSelect
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY i.item_id"

	rows := make([]placedRow, 0)
	if err := r.db.WithContext(ctx).Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, classify(err)
	}
	return placedItems(rows), nil
}

func placedItems(rows []placedRow) []domain.PlacedItem {
	result := make([]domain.PlacedItem, 0, len(rows))
	for _, rr := range rows {
		result = append(result, rr.toDomain())
	}
	return result
}

func (r *Repository) ListItemsByObject(ctx context.Context, objectID string) ([]domain.ObjectItem, error) {
	type row struct {
		ItemModel
		EquipeName  string
		Brand       string
		ModelNumber string
	}
	rows := make([]row, 0)
	err := r.db.WithContext(ctx).Raw(`
		SELECT i.item_id, i.user_id, i.equipe_id, i.serial_number, i.item_createdate, i.item_status, i.item_others,
			i.object_id, e.equipe_name, e.brand, e.model_number
		FROM item i
		JOIN equipement e ON i.equipe_id = e.equipe_id
		WHERE i.object_id = ?
		ORDER BY i.item_id`, objectID).Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	result := make([]domain.ObjectItem, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.ObjectItem{
			Item:        rr.ItemModel.toDomain(),
			EquipeName:  rr.EquipeName,
			Brand:       rr.Brand,
			ModelNumber: rr.ModelNumber,
		})
	}
	return result, nil
}

var suggestColumns = map[domain.SuggestField][2]string{
	domain.SuggestSerialNumber: {"item", "serial_number"},
	domain.SuggestNodeName:     {"node", "node_name"},
	domain.SuggestRoomName:     {"room", "room_name"},
	domain.SuggestObjectName:   {"object", "object_name"},
	domain.SuggestBranchNumber: {"node", "node_location"},
	domain.SuggestBranchName:   {"node", "node_name"},
	domain.SuggestFloor:        {"room", "room_floor"},
	domain.SuggestRoom:         {"room", "room_name"},
}

func (r *Repository) Suggest(ctx context.Context, field domain.SuggestField, term string, limit int) ([]string, error) {
	target, ok := suggestColumns[field]
	if !ok {
		return []string{}, nil
	}
	q := fmt.Sprintf("SELECT DISTINCT %[2]s AS suggestion FROM %[1]s WHERE %[2]s LIKE ? ORDER BY %[2]s LIMIT ?", target[0], target[1])

	type row struct {
		Suggestion string
	}
	rows := make([]row, 0, limit)
	if err := r.db.WithContext(ctx).Raw(q, like(term), limit).Scan(&rows).Error; err != nil {
		return nil, classify(err)
	}
	result := make([]string, 0, len(rows))
	for _, rr := range rows {
		result = append(result, rr.Suggestion)
	}
	return result, nil
}

func (r *Repository) CreateHistory(ctx context.Context, value domain.HistoryEntry) error {
	m := ItemHistoryModel{
		StatusID:   value.StatusID,
		UserID:     value.UserID,
		EquipeID:   value.EquipeID,
		ItemID:     value.ItemID,
		ObjectID:   value.ObjectID,
		CreateDate: value.CreateDate,
		Other:      value.Other,
		Status:     value.Status,
	}
	return classify(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *Repository) ListHistory(ctx context.Context, itemID string) ([]domain.HistoryRecord, error) {
	type row struct {
		ItemHistoryModel
		BranchLocation sql.NullString
		BuildingName   sql.NullString
		RoomName       sql.NullString
	}
	rows := make([]row, 0)
	err := r.db.WithContext(ctx).Raw(`
		SELECT h.statusid, h.user_id, h.equipe_id, h.item_id, h.object_id, h.item_history_createdate,
			h.item_history_other, h.item_history_status,
			n.node_location AS branch_location, n.node_name AS building_name, rm.room_name
		FROM item_history h
		LEFT JOIN object o ON h.object_id = o.object_id
		LEFT JOIN node n ON o.node_id = n.node_id
		LEFT JOIN room rm ON o.room_id = rm.room_id
		WHERE h.item_id = ?
		ORDER BY h.item_history_createdate, h.statusid`, itemID).Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	result := make([]domain.HistoryRecord, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.HistoryRecord{
			HistoryEntry: domain.HistoryEntry{
				StatusID:   rr.StatusID,
				UserID:     rr.UserID,
				EquipeID:   rr.EquipeID,
				ItemID:     rr.ItemID,
				ObjectID:   rr.ObjectID,
				CreateDate: rr.CreateDate,
				Other:      rr.Other,
				Status:     rr.Status,
			},
			BranchLocation: nullable(rr.BranchLocation),
			BuildingName:   nullable(rr.BuildingName),
			RoomName:       nullable(rr.RoomName),
		})
	}
	return result, nil
}

func (r *Repository) DeleteHistory(ctx context.Context, itemID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("item_id = ?", itemID).Delete(&ItemHistoryModel{})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	return res.RowsAffected, nil
}
