package sqlstore

import (
	"context"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

func (r *Repository) DeviceSummary(ctx context.Context, activeStatus string) (domain.DeviceSummary, error) {
	type row struct {
		TotalCount    int64
		ActiveCount   int64
		InactiveCount int64
	}
	var counts row
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS total_count,
			COALESCE(SUM(CASE WHEN item_status = ? THEN 1 ELSE 0 END), 0) AS active_count,
			COALESCE(SUM(CASE WHEN item_status <> ? THEN 1 ELSE 0 END), 0) AS inactive_count
		FROM item`, activeStatus, activeStatus).Scan(&counts).Error
	if err != nil {
		return domain.DeviceSummary{}, classify(err)
	}

	type catalogRow struct {
		TypeCount  int64
		BrandCount int64
	}
	var catalog catalogRow
	err = r.db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT equipe_type) AS type_count, COUNT(DISTINCT brand) AS brand_count
		FROM equipement`).Scan(&catalog).Error
	if err != nil {
		return domain.DeviceSummary{}, classify(err)
	}

	type brandRow struct {
		Brand string
		Count int64
	}
	brands := make([]brandRow, 0)
	err = r.db.WithContext(ctx).Raw(`
		SELECT e.brand AS brand, COUNT(i.item_id) AS count
		FROM equipement e
		LEFT JOIN item i ON e.equipe_id = i.equipe_id
		GROUP BY e.brand
		ORDER BY count DESC, e.brand`).Scan(&brands).Error
	if err != nil {
		return domain.DeviceSummary{}, classify(err)
	}

	distribution := make([]domain.BrandCount, 0, len(brands))
	for _, b := range brands {
		distribution = append(distribution, domain.BrandCount{Brand: b.Brand, Count: b.Count})
	}

	return domain.DeviceSummary{
		TotalCount:        counts.TotalCount,
		ActiveCount:       counts.ActiveCount,
		InactiveCount:     counts.InactiveCount,
		TypeCount:         catalog.TypeCount,
		BrandCount:        catalog.BrandCount,
		BrandDistribution: distribution,
	}, nil
}

func (r *Repository) EquipmentByNode(ctx context.Context) ([]domain.NodeEquipmentCount, error) {
	type row struct {
		NodeName       string
		EquipmentCount int64
	}
	rows := make([]row, 0)
	err := r.db.WithContext(ctx).Raw(`
		SELECT n.node_name, COUNT(e.equipe_id) AS equipment_count
		FROM node n
		LEFT JOIN object o ON n.node_id = o.node_id
		LEFT JOIN item i ON o.object_id = i.object_id
		LEFT JOIN equipement e ON i.equipe_id = e.equipe_id
		GROUP BY n.node_name
		ORDER BY n.node_name`).Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	result := make([]domain.NodeEquipmentCount, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.NodeEquipmentCount{NodeName: rr.NodeName, EquipmentCount: rr.EquipmentCount})
	}
	return result, nil
}

// RecentActivities merges note creations and item placements, newest first.
func (r *Repository) RecentActivities(ctx context.Context, limit int) ([]domain.Activity, error) {
	type row struct {
		Kind       string
		Title      string
		HappenedAt string
	}
	rows := make([]row, 0, limit)
	err := r.db.WithContext(ctx).Raw(`
		SELECT * FROM (
			SELECT 'note' AS kind, 'New note: ' || note_head AS title, note_createdate AS happened_at FROM note
			UNION ALL
			SELECT 'item' AS kind, 'Item status changed: ' || serial_number AS title, item_createdate AS happened_at FROM item
		) activity
		ORDER BY happened_at DESC
		LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	result := make([]domain.Activity, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.Activity{Type: rr.Kind, Title: rr.Title, Timestamp: rr.HappenedAt})
	}
	return result, nil
}
