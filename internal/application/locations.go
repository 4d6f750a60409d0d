package application

import (
	"context"
	"strings"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

const (
	emptySpaceName   = "Empty Space"
	emptySpaceType   = "Empty"
	emptySpaceOthers = "Automatically created empty space"
)

type NodeInput struct {
	Name     string `json:"name" validate:"notblank"`
	Location string `json:"location" validate:"notblank"`
	Building string `json:"building"`
}

type NodeUpdateInput struct {
	Name     string `json:"Node_Name" validate:"notblank"`
	Location string `json:"Node_Location" validate:"notblank"`
	Building string `json:"Node_Building"`
}

type RoomInput struct {
	Floor  string `json:"floor"`
	Name   string `json:"name" validate:"notblank"`
	NodeID string `json:"nodeId" validate:"notblank"`
}

type RoomUpdateInput struct {
	Floor string `json:"Room_Floor"`
	Name  string `json:"Room_Name" validate:"notblank"`
}

type ObjectInput struct {
	RoomID string `json:"roomId" validate:"notblank"`
	Name   string `json:"objectName" validate:"notblank"`
	Type   string `json:"objectType"`
	Others string `json:"objectOthers"`
}

type ObjectUpdateInput struct {
	Name   string `json:"objectName" validate:"notblank"`
	Type   string `json:"objectType"`
	Others string `json:"objectOthers"`
}

// CreatedRoom is a new room and the empty space object created with it.
type CreatedRoom struct {
	Room     domain.Room
	ObjectID string
}

func (s *InventoryService) ListNodes(ctx context.Context) ([]domain.Node, error) {
	return s.repo.ListNodes(ctx)
}

func (s *InventoryService) ListNodeRefs(ctx context.Context) ([]domain.NodeRef, error) {
	return s.repo.ListNodeRefs(ctx)
}

func (s *InventoryService) SearchNodes(ctx context.Context, term string) ([]domain.RankedNode, error) {
	if strings.TrimSpace(term) == "" {
		return []domain.RankedNode{}, nil
	}
	return s.repo.SearchNodes(ctx, term, NodeSearchLimit)
}

func (s *InventoryService) ListRoomsByNode(ctx context.Context, nodeID string) ([]domain.Room, error) {
	return s.repo.ListRoomsByNode(ctx, nodeID)
}

func (s *InventoryService) RoomOverview(ctx context.Context, filter domain.RoomFilter) ([]domain.RoomOverview, error) {
	return s.repo.ListRoomOverview(ctx, filter)
}

func (s *InventoryService) ListObjectsByRoom(ctx context.Context, roomID string) ([]domain.ObjectWithCount, error) {
	return s.repo.ListObjectsByRoom(ctx, roomID)
}

func (s *InventoryService) GetObjectDetail(ctx context.Context, objectID string) (domain.ObjectDetail, error) {
	return s.repo.GetObjectDetail(ctx, objectID)
}

func (s *InventoryService) ListObjectDetails(ctx context.Context) ([]domain.ObjectDetail, error) {
	return s.repo.ListObjectDetails(ctx)
}

// RoomObjects lists the objects of a room, each with the latest history
// entry of every item it holds.
func (s *InventoryService) RoomObjects(ctx context.Context, roomID string) ([]domain.RoomObject, error) {
	objects, err := s.repo.ListRoomObjects(ctx, roomID)
	if err != nil {
		return nil, err
	}
	for i := range objects {
		if objects[i].ItemCount == 0 {
			continue
		}
		items, err := s.repo.ListItemsByObject(ctx, objects[i].ObjectID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ItemID)
		}
		if objects[i].ItemsHistory, err = s.repo.LatestStatuses(ctx, ids); err != nil {
			return nil, err
		}
	}
	return objects, nil
}

func (s *InventoryService) CreateNode(ctx context.Context, in NodeInput) (domain.Node, error) {
	if err := check(in); err != nil {
		return domain.Node{}, err
	}

	node := domain.Node{
		Name:     strings.TrimSpace(in.Name),
		Location: strings.TrimSpace(in.Location),
		Building: in.Building,
	}
	err := s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		other, found, err := tx.FindNodeClash(ctx, node.Name, node.Location)
		if err != nil {
			return err
		}
		if found {
			if other.Name == node.Name {
				return domain.Duplicate("a branch named %s already exists", node.Name)
			}
			return domain.Duplicate("a branch with number %s already exists", node.Location)
		}
		if node.NodeID, err = allocate(ctx, tx, domain.NodeSeq); err != nil {
			return err
		}
		return tx.CreateNode(ctx, node)
	})
	if err != nil {
		return domain.Node{}, err
	}
	return node, nil
}

func (s *InventoryService) UpdateNode(ctx context.Context, nodeID string, in NodeUpdateInput) error {
	if err := check(in); err != nil {
		return err
	}
	ok, err := s.repo.UpdateNode(ctx, domain.Node{NodeID: nodeID, Name: in.Name, Location: in.Location, Building: in.Building})
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Node %s not found", nodeID)
	}
	return nil
}

// DeleteNode removes a node with its rooms and objects. It refuses while any
// item sits in one of the node's objects.
func (s *InventoryService) DeleteNode(ctx context.Context, nodeID string) error {
	return s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		if _, err := tx.GetNode(ctx, nodeID); err != nil {
			return err
		}
		count, err := tx.CountItemsInNode(ctx, nodeID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.Referential("cannot delete branch %s: %d items are still placed in it", nodeID, count)
		}
		if _, err := tx.DeleteObjectsByNode(ctx, nodeID); err != nil {
			return err
		}
		if _, err := tx.DeleteRoomsByNode(ctx, nodeID); err != nil {
			return err
		}
		_, err = tx.DeleteNode(ctx, nodeID)
		return err
	})
}

// CreateRoom adds a room to a node together with its "Empty Space" object.
func (s *InventoryService) CreateRoom(ctx context.Context, in RoomInput) (CreatedRoom, error) {
	if err := check(in); err != nil {
		return CreatedRoom{}, err
	}

	room := domain.Room{NodeID: in.NodeID, Floor: in.Floor, Name: strings.TrimSpace(in.Name)}
	var objectID string
	err := s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		if _, err := tx.GetNode(ctx, room.NodeID); err != nil {
			return err
		}
		taken, err := tx.RoomNameTaken(ctx, room.NodeID, room.Name)
		if err != nil {
			return err
		}
		if taken {
			return domain.Duplicate("a room named %s already exists in this branch", room.Name)
		}

		if room.RoomID, err = allocate(ctx, tx, domain.RoomSeq); err != nil {
			return err
		}
		if err := tx.CreateRoom(ctx, room); err != nil {
			return err
		}
		if objectID, err = allocate(ctx, tx, domain.ObjectSeq); err != nil {
			return err
		}
		return tx.CreateObject(ctx, domain.Object{
			ObjectID: objectID,
			NodeID:   room.NodeID,
			RoomID:   room.RoomID,
			Name:     emptySpaceName,
			Type:     emptySpaceType,
			Others:   emptySpaceOthers,
		})
	})
	if err != nil {
		return CreatedRoom{}, err
	}
	return CreatedRoom{Room: room, ObjectID: objectID}, nil
}

func (s *InventoryService) UpdateRoom(ctx context.Context, roomID string, in RoomUpdateInput) error {
	if err := check(in); err != nil {
		return err
	}
	ok, err := s.repo.UpdateRoom(ctx, domain.Room{RoomID: roomID, Floor: in.Floor, Name: in.Name})
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Room %s not found", roomID)
	}
	return nil
}

func (s *InventoryService) DeleteRoom(ctx context.Context, roomID string) error {
	return s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		if _, err := tx.GetRoom(ctx, roomID); err != nil {
			return err
		}
		count, err := tx.CountItemsInRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.Referential("cannot delete room %s: %d items are still placed in it", roomID, count)
		}
		if _, err := tx.DeleteObjectsByRoom(ctx, roomID); err != nil {
			return err
		}
		_, err = tx.DeleteRoom(ctx, roomID)
		return err
	})
}

func (s *InventoryService) CreateObject(ctx context.Context, in ObjectInput) (string, error) {
	if err := check(in); err != nil {
		return "", err
	}

	obj := domain.Object{RoomID: in.RoomID, Name: strings.TrimSpace(in.Name), Type: in.Type, Others: in.Others}
	err := s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		room, err := tx.GetRoom(ctx, obj.RoomID)
		if err != nil {
			return err
		}
		obj.NodeID = room.NodeID
		if obj.ObjectID, err = allocate(ctx, tx, domain.ObjectSeq); err != nil {
			return err
		}
		return tx.CreateObject(ctx, obj)
	})
	if err != nil {
		return "", err
	}
	return obj.ObjectID, nil
}

func (s *InventoryService) UpdateObject(ctx context.Context, objectID string, in ObjectUpdateInput) error {
	if err := check(in); err != nil {
		return err
	}
	ok, err := s.repo.UpdateObject(ctx, domain.Object{ObjectID: objectID, Name: in.Name, Type: in.Type, Others: in.Others})
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Object %s not found", objectID)
	}
	return nil
}

func (s *InventoryService) DeleteObject(ctx context.Context, objectID string) error {
	return s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		if _, err := tx.GetObject(ctx, objectID); err != nil {
			return err
		}
		count, err := tx.CountItemsInObject(ctx, objectID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.Referential("cannot delete object %s: it still holds %d items", objectID, count)
		}
		_, err = tx.DeleteObject(ctx, objectID)
		return err
	})
}
