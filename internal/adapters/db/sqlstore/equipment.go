package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

func (r *Repository) CreateEquipment(ctx context.Context, value domain.Equipment) error {
	m := equipmentModel(value)
	return classify(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *Repository) UpdateEquipment(ctx context.Context, value domain.Equipment) (bool, error) {
	fields := map[string]any{
		"equipe_photo": value.Photo,
		"equipe_name":  value.Name,
		"equipe_type":  value.Type,
		"model_number": value.ModelNumber,
		"brand":        value.Brand,
	}
	// a blank date keeps the stored one
	if value.CreateDate != "" {
		fields["equipe_creatdate"] = value.CreateDate
	}
	res := r.db.WithContext(ctx).Model(&EquipmentModel{}).Where("equipe_id = ?", value.EquipeID).Updates(fields)
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteEquipment(ctx context.Context, equipeID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("equipe_id = ?", equipeID).Delete(&EquipmentModel{})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) FindEquipmentClash(ctx context.Context, name, model, excludeID string) (domain.Equipment, bool, error) {
	q := r.db.WithContext(ctx).Model(&EquipmentModel{}).Where("(equipe_name = ? OR model_number = ?)", name, model)
	if excludeID != "" {
		q = q.Where("equipe_id <> ?", excludeID)
	}
	rows := make([]EquipmentModel, 0, 1)
	if err := q.Order("equipe_id").Limit(1).Find(&rows).Error; err != nil {
		return domain.Equipment{}, false, classify(err)
	}
	if len(rows) == 0 {
		return domain.Equipment{}, false, nil
	}
	return rows[0].toDomain(), true, nil
}

func (r *Repository) ListEquipment(ctx context.Context, filter domain.EquipmentFilter) ([]domain.EquipmentSummary, error) {
	type row struct {
		EquipmentModel
		ItemCount int64
	}

	conds := make([]string, 0, 5)
	args := make([]any, 0, 5)
	for _, f := range []struct{ col, val string }{
		{"e.equipe_id", filter.EquipeID},
		{"e.equipe_name", filter.Name},
		{"e.equipe_type", filter.Type},
		{"e.model_number", filter.ModelNumber},
		{"e.brand", filter.Brand},
	} {
		if strings.TrimSpace(f.val) != "" {
			conds = append(conds, f.col+" LIKE ?")
			args = append(args, like(f.val))
		}
	}

	q := `SELECT e.equipe_id, e.user_id, e.equipe_photo, e.equipe_name, e.equipe_type, e.equipe_creatdate,
			e.model_number, e.brand, COUNT(i.item_id) AS item_count
		FROM equipement e
		LEFT JOIN item i ON e.equipe_id = i.equipe_id`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += ` GROUP BY e.equipe_id, e.user_id, e.equipe_photo, e.equipe_name, e.equipe_type, e.equipe_creatdate,
			e.model_number, e.brand
		ORDER BY e.equipe_id`

	rows := make([]row, 0)
	if err := r.db.WithContext(ctx).Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, classify(err)
	}
	result := make([]domain.EquipmentSummary, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.EquipmentSummary{Equipment: rr.EquipmentModel.toDomain(), ItemCount: rr.ItemCount})
	}
	return result, nil
}

func (r *Repository) GetEquipmentDetail(ctx context.Context, equipeID string) (domain.EquipmentDetail, error) {
	type row struct {
		EquipmentModel
		ItemID         sql.NullString
		SerialNumber   sql.NullString
		ItemCreatedate sql.NullString
		ItemStatus     sql.NullString
		ItemOthers     sql.NullString
		ObjectID       sql.NullString
	}
	rows := make([]row, 0, 1)
	err := r.db.WithContext(ctx).Raw(`
		SELECT e.equipe_id, e.user_id, e.equipe_photo, e.equipe_name, e.equipe_type, e.equipe_creatdate,
			e.model_number, e.brand,
			i.item_id, i.serial_number, i.item_createdate, i.item_status, i.item_others, i.object_id
		FROM equipement e
		LEFT JOIN item i ON e.equipe_id = i.equipe_id
		WHERE e.equipe_id = ?
		ORDER BY i.item_id
		LIMIT 1`, equipeID).Scan(&rows).Error
	if err != nil {
		return domain.EquipmentDetail{}, classify(err)
	}
	if len(rows) == 0 {
		return domain.EquipmentDetail{}, domain.NotFound("Equipment not found")
	}
	rr := rows[0]
	return domain.EquipmentDetail{
		Equipment:      rr.EquipmentModel.toDomain(),
		ItemID:         nullable(rr.ItemID),
		SerialNumber:   nullable(rr.SerialNumber),
		ItemCreateDate: nullable(rr.ItemCreatedate),
		ItemStatus:     nullable(rr.ItemStatus),
		ItemOthers:     nullable(rr.ItemOthers),
		ObjectID:       nullable(rr.ObjectID),
	}, nil
}

func (r *Repository) ListAvailableEquipment(ctx context.Context) ([]domain.AvailableEquipment, error) {
	type row struct {
		EquipeID     string
		EquipeName   string
		Brand        string
		ModelNumber  string
		CurrentItems int64
		EquipeType   string
	}
	rows := make([]row, 0)
	err := r.db.WithContext(ctx).Raw(`
		SELECT e.equipe_id, e.equipe_name, e.brand, e.model_number, COUNT(i.item_id) AS current_items, e.equipe_type
		FROM equipement e
		LEFT JOIN item i ON e.equipe_id = i.equipe_id
		GROUP BY e.equipe_id, e.equipe_name, e.brand, e.model_number, e.equipe_type
		ORDER BY e.equipe_id`).Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	result := make([]domain.AvailableEquipment, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.AvailableEquipment{
			EquipeID:     rr.EquipeID,
			Name:         rr.EquipeName,
			Brand:        rr.Brand,
			ModelNumber:  rr.ModelNumber,
			CurrentItems: rr.CurrentItems,
			Type:         rr.EquipeType,
		})
	}
	return result, nil
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
