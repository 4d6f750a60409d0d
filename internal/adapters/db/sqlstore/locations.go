package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

func (r *Repository) CreateNode(ctx context.Context, value domain.Node) error {
	m := NodeModel{NodeID: value.NodeID, Name: value.Name, Location: value.Location, Building: value.Building}
	return classify(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *Repository) UpdateNode(ctx context.Context, value domain.Node) (bool, error) {
	res := r.db.WithContext(ctx).Model(&NodeModel{}).Where("node_id = ?", value.NodeID).Updates(map[string]any{
		"node_name":     value.Name,
		"node_location": value.Location,
		"node_building": value.Building,
	})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) GetNode(ctx context.Context, nodeID string) (domain.Node, error) {
	var m NodeModel
	if err := r.db.WithContext(ctx).Where("node_id = ?", nodeID).First(&m).Error; err != nil {
		return domain.Node{}, notFound(err, "Node %s not found", nodeID)
	}
	return m.toDomain(), nil
}

func (r *Repository) DeleteNode(ctx context.Context, nodeID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("node_id = ?", nodeID).Delete(&NodeModel{})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) FindNodeClash(ctx context.Context, name, location string) (domain.Node, bool, error) {
	rows := make([]NodeModel, 0, 1)
	err := r.db.WithContext(ctx).Where("node_name = ? OR node_location = ?", name, location).
		Order("node_id").Limit(1).Find(&rows).Error
	if err != nil {
		return domain.Node{}, false, classify(err)
	}
	if len(rows) == 0 {
		return domain.Node{}, false, nil
	}
	return rows[0].toDomain(), true, nil
}

func (r *Repository) ListNodes(ctx context.Context) ([]domain.Node, error) {
	rows := make([]NodeModel, 0)
	if err := r.db.WithContext(ctx).Order("node_id").Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	result := make([]domain.Node, 0, len(rows))
	for _, m := range rows {
		result = append(result, m.toDomain())
	}
	return result, nil
}

func (r *Repository) ListNodeRefs(ctx context.Context) ([]domain.NodeRef, error) {
	nodes, err := r.ListNodes(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]domain.NodeRef, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, domain.NodeRef{ID: n.NodeID, Name: n.Name, Location: n.Location})
	}
	return result, nil
}

// SearchNodes ranks prefix matches over substring matches over suffix
// matches, scoring name and location separately.
func (r *Repository) SearchNodes(ctx context.Context, term string, limit int) ([]domain.RankedNode, error) {
	term = strings.TrimSpace(term)
	prefix, contains, suffix := term+"%", "%"+term+"%", "%"+term

	type row struct {
		ID        string
		Name      string
		Location  string
		Relevance int
	}
	rows := make([]row, 0, limit)
	err := r.db.WithContext(ctx).Raw(`
		SELECT node_id AS id, node_name AS name, node_location AS location,
			(CASE WHEN node_name LIKE ? THEN 3 WHEN node_name LIKE ? THEN 2 WHEN node_name LIKE ? THEN 1 ELSE 0 END +
			 CASE WHEN node_location LIKE ? THEN 3 WHEN node_location LIKE ? THEN 2 WHEN node_location LIKE ? THEN 1 ELSE 0 END) AS relevance
		FROM node
		WHERE node_name LIKE ? OR node_location LIKE ?
		ORDER BY relevance DESC, node_id
		LIMIT ?`,
		prefix, contains, suffix, prefix, contains, suffix, contains, contains, limit).Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	result := make([]domain.RankedNode, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.RankedNode{
			NodeRef:   domain.NodeRef{ID: rr.ID, Name: rr.Name, Location: rr.Location},
			Relevance: rr.Relevance,
		})
	}
	return result, nil
}

func (r *Repository) CreateRoom(ctx context.Context, value domain.Room) error {
	m := RoomModel{RoomID: value.RoomID, NodeID: value.NodeID, Floor: value.Floor, Name: value.Name}
	return classify(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *Repository) UpdateRoom(ctx context.Context, value domain.Room) (bool, error) {
	res := r.db.WithContext(ctx).Model(&RoomModel{}).Where("room_id = ?", value.RoomID).Updates(map[string]any{
		"room_floor": value.Floor,
		"room_name":  value.Name,
	})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) GetRoom(ctx context.Context, roomID string) (domain.Room, error) {
	var m RoomModel
	if err := r.db.WithContext(ctx).Where("room_id = ?", roomID).First(&m).Error; err != nil {
		return domain.Room{}, notFound(err, "Room %s not found", roomID)
	}
	return m.toDomain(), nil
}

func (r *Repository) DeleteRoom(ctx context.Context, roomID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("room_id = ?", roomID).Delete(&RoomModel{})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteRoomsByNode(ctx context.Context, nodeID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("node_id = ?", nodeID).Delete(&RoomModel{})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *Repository) RoomNameTaken(ctx context.Context, nodeID, name string) (bool, error) {
	return exists(ctx, r.db, &RoomModel{}, "node_id = ? AND room_name = ?", nodeID, name)
}

func (r *Repository) ListRoomsByNode(ctx context.Context, nodeID string) ([]domain.Room, error) {
	rows := make([]RoomModel, 0)
	if err := r.db.WithContext(ctx).Where("node_id = ?", nodeID).Order("room_id").Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	result := make([]domain.Room, 0, len(rows))
	for _, m := range rows {
		room := m.toDomain()
		room.NodeID = ""
		result = append(result, room)
	}
	return result, nil
}

func (r *Repository) ListRoomOverview(ctx context.Context, filter domain.RoomFilter) ([]domain.RoomOverview, error) {
	conds := make([]string, 0, 5)
	args := make([]any, 0, 5)
	for _, f := range []struct{ col, val string }{
		{"n.node_location", filter.BranchNumber},
		{"n.node_name", filter.BranchName},
		{"n.node_building", filter.Building},
		{"rm.room_floor", filter.Floor},
		{"rm.room_name", filter.Room},
	} {
		if strings.TrimSpace(f.val) != "" {
			conds = append(conds, f.col+" LIKE ?")
			args = append(args, like(f.val))
		}
	}

	q := `SELECT n.node_id, rm.room_id, n.node_location AS branch_number, n.node_name AS branch_name,
			n.node_building AS building_name, rm.room_floor AS floor, rm.room_name,
			COUNT(DISTINCT i.item_id) AS item_count
		FROM node n
		LEFT JOIN room rm ON n.node_id = rm.node_id
		LEFT JOIN object o ON rm.room_id = o.room_id
		LEFT JOIN item i ON o.object_id = i.object_id`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += ` GROUP BY n.node_id, rm.room_id, n.node_location, n.node_name, n.node_building, rm.room_floor, rm.room_name
		ORDER BY n.node_id, rm.room_id`

	type row struct {
		NodeID       string
		RoomID       sql.NullString
		BranchNumber string
		BranchName   string
		BuildingName string
		Floor        sql.NullString
		RoomName     sql.NullString
		ItemCount    int64
	}
	rows := make([]row, 0)
	if err := r.db.WithContext(ctx).Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, classify(err)
	}
	result := make([]domain.RoomOverview, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.RoomOverview{
			NodeID:       rr.NodeID,
			RoomID:       nullable(rr.RoomID),
			BranchNumber: rr.BranchNumber,
			BranchName:   rr.BranchName,
			BuildingName: rr.BuildingName,
			Floor:        nullable(rr.Floor),
			RoomName:     nullable(rr.RoomName),
			ItemCount:    rr.ItemCount,
		})
	}
	return result, nil
}

func (r *Repository) CreateObject(ctx context.Context, value domain.Object) error {
	m := ObjectModel{
		ObjectID: value.ObjectID,
		NodeID:   value.NodeID,
		RoomID:   value.RoomID,
		Name:     value.Name,
		Type:     value.Type,
		Others:   value.Others,
	}
	return classify(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *Repository) UpdateObject(ctx context.Context, value domain.Object) (bool, error) {
	res := r.db.WithContext(ctx).Model(&ObjectModel{}).Where("object_id = ?", value.ObjectID).Updates(map[string]any{
		"object_name":   value.Name,
		"object_type":   value.Type,
		"object_others": value.Others,
	})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) GetObject(ctx context.Context, objectID string) (domain.Object, error) {
	var m ObjectModel
	if err := r.db.WithContext(ctx).Where("object_id = ?", objectID).First(&m).Error; err != nil {
		return domain.Object{}, notFound(err, "Object %s not found", objectID)
	}
	return m.toDomain(), nil
}

func (r *Repository) DeleteObject(ctx context.Context, objectID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("object_id = ?", objectID).Delete(&ObjectModel{})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteObjectsByRoom(ctx context.Context, roomID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("room_id = ?", roomID).Delete(&ObjectModel{})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteObjectsByNode removes the objects of every room of the node.
func (r *Repository) DeleteObjectsByNode(ctx context.Context, nodeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("room_id IN (?)", r.db.Model(&RoomModel{}).Select("room_id").Where("node_id = ?", nodeID)).
		Delete(&ObjectModel{})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *Repository) ListObjectsByRoom(ctx context.Context, roomID string) ([]domain.ObjectWithCount, error) {
	type row struct {
		ObjectModel
		ItemCount int64
	}
	rows := make([]row, 0)
	err := r.db.WithContext(ctx).Raw(`
		SELECT o.object_id, o.node_id, o.room_id, o.object_name, o.object_type, o.object_others,
			COUNT(i.item_id) AS item_count
		FROM object o
		LEFT JOIN item i ON o.object_id = i.object_id
		WHERE o.room_id = ?
		GROUP BY o.object_id, o.node_id, o.room_id, o.object_name, o.object_type, o.object_others
		ORDER BY o.object_id`, roomID).Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	result := make([]domain.ObjectWithCount, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.ObjectWithCount{Object: rr.ObjectModel.toDomain(), ItemCount: rr.ItemCount})
	}
	return result, nil
}

func (r *Repository) ListRoomObjects(ctx context.Context, roomID string) ([]domain.RoomObject, error) {
	type row struct {
		ObjectModel
		ItemCount    int64
		NodeName     string
		NodeLocation string
		NodeBuilding string
		RoomFloor    string
		RoomName     string
	}
	rows := make([]row, 0)
	err := r.db.WithContext(ctx).Raw(`
		SELECT o.object_id, o.node_id, o.room_id, o.object_name, o.object_type, o.object_others,
			COUNT(DISTINCT i.item_id) AS item_count,
			n.node_name, n.node_location, n.node_building, rm.room_floor, rm.room_name
		FROM object o
		JOIN node n ON o.node_id = n.node_id
		JOIN room rm ON o.room_id = rm.room_id
		LEFT JOIN item i ON o.object_id = i.object_id
		WHERE o.room_id = ?
		GROUP BY o.object_id, o.node_id, o.room_id, o.object_name, o.object_type, o.object_others,
			n.node_name, n.node_location, n.node_building, rm.room_floor, rm.room_name
		ORDER BY o.object_id`, roomID).Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	result := make([]domain.RoomObject, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.RoomObject{
			Object:       rr.ObjectModel.toDomain(),
			ItemCount:    rr.ItemCount,
			NodeName:     rr.NodeName,
			NodeLocation: rr.NodeLocation,
			NodeBuilding: rr.NodeBuilding,
			RoomFloor:    rr.RoomFloor,
			RoomName:     rr.RoomName,
		})
	}
	return result, nil
}

// LatestStatuses pairs each item with its most recent history entry, if any.
func (r *Repository) LatestStatuses(ctx context.Context, itemIDs []string) ([]domain.ItemLatestStatus, error) {
	if len(itemIDs) == 0 {
		return []domain.ItemLatestStatus{}, nil
	}
	type row struct {
		ItemID                string
		ItemStatus            string
		ItemHistoryStatus     sql.NullString
		ItemHistoryCreatedate sql.NullString
	}
	rows := make([]row, 0, len(itemIDs))
	err := r.db.WithContext(ctx).Raw(`
		SELECT i.item_id, i.item_status, h.item_history_status, h.item_history_createdate
		FROM item i
		LEFT JOIN (
			SELECT item_id, item_history_status, item_history_createdate,
				ROW_NUMBER() OVER (PARTITION BY item_id ORDER BY item_history_createdate DESC, statusid DESC) AS rn
			FROM item_history
		) h ON i.item_id = h.item_id AND h.rn = 1
		WHERE i.item_id IN ?
		ORDER BY i.item_id`, itemIDs).Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	result := make([]domain.ItemLatestStatus, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.ItemLatestStatus{
			ItemID:            rr.ItemID,
			Status:            rr.ItemStatus,
			HistoryStatus:     nullable(rr.ItemHistoryStatus),
			HistoryCreateDate: nullable(rr.ItemHistoryCreatedate),
		})
	}
	return result, nil
}

type objectDetailRow struct {
	ObjectModel
	NodeName string
	RoomName string
}

const objectDetailSelect = `
	SELECT o.object_id, o.node_id, o.room_id, o.object_name, o.object_type, o.object_others, n.node_name, rm.room_name
	FROM object o
	JOIN node n ON o.node_id = n.node_id
	JOIN room rm ON o.room_id = rm.room_id`

func (r *Repository) GetObjectDetail(ctx context.Context, objectID string) (domain.ObjectDetail, error) {
	rows := make([]objectDetailRow, 0, 1)
	if err := r.db.WithContext(ctx).Raw(objectDetailSelect+" WHERE o.object_id = ?", objectID).Scan(&rows).Error; err != nil {
		return domain.ObjectDetail{}, classify(err)
	}
	if len(rows) == 0 {
		return domain.ObjectDetail{}, domain.NotFound("Object not found")
	}
	return domain.ObjectDetail{Object: rows[0].ObjectModel.toDomain(), NodeName: rows[0].NodeName, RoomName: rows[0].RoomName}, nil
}

func (r *Repository) ListObjectDetails(ctx context.Context) ([]domain.ObjectDetail, error) {
	rows := make([]objectDetailRow, 0)
	if err := r.db.WithContext(ctx).Raw(objectDetailSelect + " ORDER BY o.object_id").Scan(&rows).Error; err != nil {
		return nil, classify(err)
	}
	result := make([]domain.ObjectDetail, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.ObjectDetail{Object: rr.ObjectModel.toDomain(), NodeName: rr.NodeName, RoomName: rr.RoomName})
	}
	return result, nil
}

func (r *Repository) ListPlacements(ctx context.Context, filter domain.PlacementFilter, pageSize int) ([]domain.Placement, error) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 6)
	for _, f := range []struct{ col, val string }{
		{"n.node_name", filter.NodeName},
		{"rm.room_name", filter.RoomName},
		{"rm.room_floor", filter.FloorName},
		{"o.object_name", filter.ObjectName},
	} {
		if strings.TrimSpace(f.val) != "" {
			conds = append(conds, f.col+" LIKE ?")
			args = append(args, like(f.val))
		}
	}

	q := `SELECT o.object_id, o.object_name, n.node_name, rm.room_name, rm.room_floor,
			i.item_id, i.serial_number, i.item_status, i.item_createdate, i.item_others
		FROM object o
		JOIN node n ON o.node_id = n.node_id
		JOIN room rm ON o.room_id = rm.room_id
		JOIN item i ON o.object_id = i.object_id`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	q += " ORDER BY o.object_id, i.item_id LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	type row struct {
		ObjectID       string
		ObjectName     string
		NodeName       string
		RoomName       string
		RoomFloor      string
		ItemID         string
		SerialNumber   string
		ItemStatus     string
		ItemCreatedate string
		ItemOthers     string
	}
	rows := make([]row, 0, pageSize)
	if err := r.db.WithContext(ctx).Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, classify(err)
	}
	result := make([]domain.Placement, 0, len(rows))
	for _, rr := range rows {
		result = append(result, domain.Placement{
			ObjectID:       rr.ObjectID,
			ObjectName:     rr.ObjectName,
			NodeName:       rr.NodeName,
			RoomName:       rr.RoomName,
			RoomFloor:      rr.RoomFloor,
			ItemID:         rr.ItemID,
			SerialNumber:   rr.SerialNumber,
			ItemStatus:     rr.ItemStatus,
			ItemCreateDate: rr.ItemCreatedate,
			ItemOthers:     rr.ItemOthers,
		})
	}
	return result, nil
}

func (r *Repository) CountItemsInNode(ctx context.Context, nodeID string) (int64, error) {
	return r.countItems(ctx, `
		SELECT COUNT(*) AS total FROM item i
		JOIN object o ON i.object_id = o.object_id
		JOIN room rm ON o.room_id = rm.room_id
		WHERE rm.node_id = ?`, nodeID)
}

func (r *Repository) CountItemsInRoom(ctx context.Context, roomID string) (int64, error) {
	return r.countItems(ctx, `
		SELECT COUNT(*) AS total FROM item i
		JOIN object o ON i.object_id = o.object_id
		WHERE o.room_id = ?`, roomID)
}

func (r *Repository) CountItemsInObject(ctx context.Context, objectID string) (int64, error) {
	return r.countItems(ctx, `SELECT COUNT(*) AS total FROM item WHERE object_id = ?`, objectID)
}

func (r *Repository) countItems(ctx context.Context, q string, args ...any) (int64, error) {
	type row struct {
		Total int64
	}
	var rr row
	if err := r.db.WithContext(ctx).Raw(q, args...).Scan(&rr).Error; err != nil {
		return 0, classify(err)
	}
	return rr.Total, nil
}
