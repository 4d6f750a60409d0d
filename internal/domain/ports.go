package domain

import (
	"context"
	"io"
	"time"
)

// SuggestField selects the column a typeahead suggestion is drawn from.
type SuggestField string

const (
	SuggestSerialNumber SuggestField = "Serial_Number"
	SuggestNodeName     SuggestField = "Node_Name"
	SuggestRoomName     SuggestField = "Room_Name"
	SuggestObjectName   SuggestField = "Object_Name"
	SuggestBranchNumber SuggestField = "branch_number"
	SuggestBranchName   SuggestField = "branch_name"
	SuggestFloor        SuggestField = "floor"
	SuggestRoom         SuggestField = "room"
)

type UserRepository interface {
	CreateUser(ctx context.Context, value User) error
	UpdateUser(ctx context.Context, value User, withPassword bool) (bool, error)
	DeleteUser(ctx context.Context, userID string) (bool, error)
	GetUserByID(ctx context.Context, userID string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByToken(ctx context.Context, token string) (User, error)
	SetAccessToken(ctx context.Context, userID, token string) error
	UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error)
	CountUsers(ctx context.Context) (int64, error)
	ListUsers(ctx context.Context) ([]UserSummary, error)
	ListRoles(ctx context.Context) ([]Role, error)
}

type EquipmentRepository interface {
	CreateEquipment(ctx context.Context, value Equipment) error
	UpdateEquipment(ctx context.Context, value Equipment) (bool, error)
	DeleteEquipment(ctx context.Context, equipeID string) (bool, error)
	// FindEquipmentClash returns an equipment other than excludeID sharing the name or the model number.
	FindEquipmentClash(ctx context.Context, name, model, excludeID string) (Equipment, bool, error)
	ListEquipment(ctx context.Context, filter EquipmentFilter) ([]EquipmentSummary, error)
	GetEquipmentDetail(ctx context.Context, equipeID string) (EquipmentDetail, error)
	ListAvailableEquipment(ctx context.Context) ([]AvailableEquipment, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, value Item) error
	GetItem(ctx context.Context, itemID string) (Item, error)
	UpdateItem(ctx context.Context, value Item) error
	DeleteItem(ctx context.Context, itemID string) (bool, error)
	SerialNumberTaken(ctx context.Context, serial string) (bool, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]Item, error)
	ListItemsByEquipment(ctx context.Context, equipeID string) ([]PlacedItem, error)
	SearchItems(ctx context.Context, filter ItemSearch) ([]PlacedItem, error)
	ListItemsByObject(ctx context.Context, objectID string) ([]ObjectItem, error)
	Suggest(ctx context.Context, field SuggestField, term string, limit int) ([]string, error)

	CreateHistory(ctx context.Context, value HistoryEntry) error
	ListHistory(ctx context.Context, itemID string) ([]HistoryRecord, error)
	DeleteHistory(ctx context.Context, itemID string) (int64, error)
}

type NoteRepository interface {
	CreateNote(ctx context.Context, value Note) error
	UpdateNote(ctx context.Context, value Note) (bool, error)
	GetNote(ctx context.Context, noteID string) (Note, error)
	DeleteNote(ctx context.Context, noteID string) (bool, error)
	ListNotes(ctx context.Context) ([]NoteView, error)
	ListNotesByUser(ctx context.Context, userID string) ([]AuthoredNote, error)
	SearchNotes(ctx context.Context, searchType NoteSearchType, term string) ([]NoteView, error)
	AddNoteImage(ctx context.Context, value NoteImage) error
	ListNoteImages(ctx context.Context, noteID string) ([]NoteImage, error)
	DeleteNoteImages(ctx context.Context, noteID string) (int64, error)
}

type LocationRepository interface {
	CreateNode(ctx context.Context, value Node) error
	UpdateNode(ctx context.Context, value Node) (bool, error)
	GetNode(ctx context.Context, nodeID string) (Node, error)
	DeleteNode(ctx context.Context, nodeID string) (bool, error)
	// FindNodeClash returns a node sharing the name or the location number.
	FindNodeClash(ctx context.Context, name, location string) (Node, bool, error)
	ListNodes(ctx context.Context) ([]Node, error)
	ListNodeRefs(ctx context.Context) ([]NodeRef, error)
	SearchNodes(ctx context.Context, term string, limit int) ([]RankedNode, error)

	CreateRoom(ctx context.Context, value Room) error
	UpdateRoom(ctx context.Context, value Room) (bool, error)
	GetRoom(ctx context.Context, roomID string) (Room, error)
	DeleteRoom(ctx context.Context, roomID string) (bool, error)
	DeleteRoomsByNode(ctx context.Context, nodeID string) (int64, error)
	RoomNameTaken(ctx context.Context, nodeID, name string) (bool, error)
	ListRoomsByNode(ctx context.Context, nodeID string) ([]Room, error)
	ListRoomOverview(ctx context.Context, filter RoomFilter) ([]RoomOverview, error)

	CreateObject(ctx context.Context, value Object) error
	UpdateObject(ctx context.Context, value Object) (bool, error)
	GetObject(ctx context.Context, objectID string) (Object, error)
	DeleteObject(ctx context.Context, objectID string) (bool, error)
	DeleteObjectsByRoom(ctx context.Context, roomID string) (int64, error)
	DeleteObjectsByNode(ctx context.Context, nodeID string) (int64, error)
	ListObjectsByRoom(ctx context.Context, roomID string) ([]ObjectWithCount, error)
	ListRoomObjects(ctx context.Context, roomID string) ([]RoomObject, error)
	LatestStatuses(ctx context.Context, itemIDs []string) ([]ItemLatestStatus, error)
	GetObjectDetail(ctx context.Context, objectID string) (ObjectDetail, error)
	ListObjectDetails(ctx context.Context) ([]ObjectDetail, error)
	ListPlacements(ctx context.Context, filter PlacementFilter, pageSize int) ([]Placement, error)

	CountItemsInNode(ctx context.Context, nodeID string) (int64, error)
	CountItemsInRoom(ctx context.Context, roomID string) (int64, error)
	CountItemsInObject(ctx context.Context, objectID string) (int64, error)
}

type DashboardRepository interface {
	DeviceSummary(ctx context.Context, activeStatus string) (DeviceSummary, error)
	EquipmentByNode(ctx context.Context) ([]NodeEquipmentCount, error)
	RecentActivities(ctx context.Context, limit int) ([]Activity, error)
}

// InventoryRepository is the full persistence port.
type InventoryRepository interface {
	UserRepository
	EquipmentRepository
	ItemRepository
	NoteRepository
	LocationRepository
	DashboardRepository

	// NextID returns the next unused identifier of seq. It only reads.
	NextID(ctx context.Context, seq Sequence) (string, error)
	// WithinTx runs fn on a repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx InventoryRepository) error) error
}

type BlobInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// BlobStore keeps uploaded files. Put overwrites an existing key.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (BlobInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, BlobInfo, error)
	Head(ctx context.Context, key string) (BlobInfo, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
	Driver() string
}
