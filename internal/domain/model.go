package domain

import "time"

// TimeLayout is the textual form used for every stored timestamp.
const TimeLayout = "2006-01-02 15:04:05"

// DefaultItemStatus is the status of a freshly placed item.
const DefaultItemStatus = "active"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

type Role struct {
	RoleID   int    `json:"Role_ID"`
	Rolename string `json:"Rolename"`
}

type User struct {
	UserID       string `json:"User_ID"`
	Username     string `json:"Username"`
	PasswordHash string `json:"-"`
	Name         string `json:"Name"`
	TelNumber    string `json:"Tel_Number"`
	Email        string `json:"Email"`
	RoleID       int    `json:"Role_ID"`
	AccessToken  string `json:"-"`
}

// UserSummary is the listing shape returned for user management.
type UserSummary struct {
	UserID   string `json:"User_ID"`
	Username string `json:"Username"`
	Name     string `json:"Name"`
	Phone    string `json:"phone"`
	Email    string `json:"Email"`
	RoleID   int    `json:"Role_ID"`
	RoleName string `json:"RoleName"`
}

type Profile struct {
	UserID   string `json:"User_ID"`
	Username string `json:"Username"`
	Name     string `json:"Name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	RoleID   int    `json:"Role_ID"`
}

type Identity struct {
	User User
}

type Equipment struct {
	EquipeID    string `json:"Equipe_ID"`
	UserID      string `json:"User_ID"`
	Photo       string `json:"Equipe_Photo"`
	Name        string `json:"Equipe_Name"`
	Type        string `json:"Equipe_Type"`
	CreateDate  string `json:"Equipe_CreatDate"`
	ModelNumber string `json:"Model_Number"`
	Brand       string `json:"Brand"`
}

type EquipmentFilter struct {
	EquipeID    string
	Name        string
	Type        string
	ModelNumber string
	Brand       string
}

type EquipmentSummary struct {
	Equipment
	ItemCount int64 `json:"ItemCount"`
}

// EquipmentDetail is an equipment row joined with its first item, if any.
type EquipmentDetail struct {
	Equipment
	ItemID         *string `json:"Item_ID"`
	SerialNumber   *string `json:"Serial_Number"`
	ItemCreateDate *string `json:"Item_CreateDate"`
	ItemStatus     *string `json:"Item_Status"`
	ItemOthers     *string `json:"Item_Others"`
	ObjectID       *string `json:"Object_ID"`
}

type AvailableEquipment struct {
	EquipeID     string `json:"Equipe_ID"`
	Name         string `json:"Equipe_Name"`
	Brand        string `json:"Brand"`
	ModelNumber  string `json:"Model_Number"`
	CurrentItems int64  `json:"current_items"`
	Type         string `json:"Equipe_Type"`
}

type Item struct {
	ItemID       string `json:"Item_ID"`
	UserID       string `json:"User_ID"`
	EquipeID     string `json:"Equipe_ID"`
	SerialNumber string `json:"Serial_Number"`
	CreateDate   string `json:"Item_CreateDate"`
	Status       string `json:"Item_Status"`
	Others       string `json:"Item_Others"`
	ObjectID     string `json:"Object_ID"`
}

type ItemFilter struct {
	ItemID       string
	SerialNumber string
	CreateDate   string
	Status       string
}

// ItemSearch holds the substring filters of the placement search; Status matches exactly.
type ItemSearch struct {
	SerialNumber string
	NodeName     string
	RoomName     string
	ObjectName   string
	Status       string
}

// PlacedItem is an item with the location it currently occupies.
type PlacedItem struct {
	Item
	NodeID         string `json:"Node_ID,omitempty"`
	RoomID         string `json:"Room_ID,omitempty"`
	BranchLocation string `json:"Branch_Location"`
	BuildingName   string `json:"Building_Name"`
	RoomName       string `json:"Room_Name"`
}

type ObjectItem struct {
	Item
	EquipeName  string `json:"Equipe_Name"`
	Brand       string `json:"Brand"`
	ModelNumber string `json:"Model_Number"`
}

// StatusChange is one requested transition for the status audit trail.
// Empty UserID and EquipeID are taken from the stored item. ObjectID is
// recorded on the history row and, with Relocate, also moves the item.
type StatusChange struct {
	ItemID       string
	UserID       string
	EquipeID     string
	ObjectID     string
	Relocate     bool
	SerialNumber *string
	CreateDate   *string
	Status       string
	Others       string
}

type StatusChangeResult struct {
	Changed  bool   `json:"statusChanged"`
	StatusID string `json:"statusId,omitempty"`
}

type HistoryEntry struct {
	StatusID   string `json:"StatusID"`
	UserID     string `json:"User_ID"`
	EquipeID   string `json:"Equipe_ID"`
	ItemID     string `json:"Item_ID"`
	ObjectID   string `json:"Object_ID"`
	CreateDate string `json:"Item_history_CreateDate"`
	Other      string `json:"Item_history_Other"`
	Status     string `json:"Item_history_Status"`
}

type HistoryRecord struct {
	HistoryEntry
	BranchLocation *string `json:"Branch_Location"`
	BuildingName   *string `json:"Building_Name"`
	RoomName       *string `json:"Room_Name"`
}

type Note struct {
	NoteID           string `json:"Note_ID"`
	UserID           string `json:"User_ID"`
	Head             string `json:"Note_Head"`
	Body             string `json:"Note"`
	CreateDate       string `json:"Note_CreateDate"`
	LastModifiedDate string `json:"Note_LastModifiedDate"`
}

type NoteView struct {
	Note
	Name     *string `json:"Name"`
	RoleName *string `json:"RoleName"`
}

type AuthoredNote struct {
	Note
	Author string `json:"author"`
}

type NoteImage struct {
	ImageID   string `json:"Image_ID"`
	NoteID    string `json:"-"`
	ImagePath string `json:"Image_Path"`
}

type NoteSearchType string

const (
	NoteSearchAll   NoteSearchType = "all"
	NoteSearchName  NoteSearchType = "name"
	NoteSearchTitle NoteSearchType = "title"
	NoteSearchDate  NoteSearchType = "date"
)

type Node struct {
	NodeID   string `json:"Node_ID"`
	Name     string `json:"Node_Name"`
	Location string `json:"Node_Location"`
	Building string `json:"Node_Building"`
}

type NodeRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type RankedNode struct {
	NodeRef
	Relevance int `json:"relevance"`
}

type Room struct {
	RoomID string `json:"Room_ID"`
	NodeID string `json:"Node_ID,omitempty"`
	Floor  string `json:"Room_Floor"`
	Name   string `json:"Room_Name"`
}

// RoomOverview is one row of the node/room grid.
type RoomOverview struct {
	NodeID       string  `json:"node_id,omitempty"`
	RoomID       *string `json:"room_id,omitempty"`
	BranchNumber string  `json:"branch_number"`
	BranchName   string  `json:"branch_name"`
	BuildingName string  `json:"building_name"`
	Floor        *string `json:"floor"`
	RoomName     *string `json:"room_name"`
	ItemCount    int64   `json:"item_count"`
}

type RoomFilter struct {
	BranchNumber string
	BranchName   string
	Building     string
	Floor        string
	Room         string
}

type Object struct {
	ObjectID string `json:"Object_ID"`
	NodeID   string `json:"Node_ID"`
	RoomID   string `json:"Room_ID"`
	Name     string `json:"Object_Name"`
	Type     string `json:"Object_Type"`
	Others   string `json:"Object_Others"`
}

type ObjectWithCount struct {
	Object
	ItemCount int64 `json:"item_count"`
}

type ObjectDetail struct {
	Object
	NodeName string `json:"Node_Name"`
	RoomName string `json:"Room_Name"`
}

type ItemLatestStatus struct {
	ItemID            string  `json:"Item_ID"`
	Status            string  `json:"Item_Status"`
	HistoryStatus     *string `json:"Item_history_Status"`
	HistoryCreateDate *string `json:"Item_history_CreateDate"`
}

type RoomObject struct {
	Object
	ItemCount    int64              `json:"item_count"`
	NodeName     string             `json:"Node_Name"`
	NodeLocation string             `json:"Node_Location"`
	NodeBuilding string             `json:"Node_Building"`
	RoomFloor    string             `json:"Room_Floor"`
	RoomName     string             `json:"Room_Name"`
	ItemsHistory []ItemLatestStatus `json:"items_history,omitempty"`
}

type PlacementFilter struct {
	NodeName   string
	RoomName   string
	FloorName  string
	ObjectName string
	Page       int
}

// Placement is an object together with one of the items it holds.
type Placement struct {
	ObjectID       string `json:"Object_ID"`
	ObjectName     string `json:"Object_Name"`
	NodeName       string `json:"Node_Name"`
	RoomName       string `json:"Room_Name"`
	RoomFloor      string `json:"Room_Floor"`
	ItemID         string `json:"Item_ID"`
	SerialNumber   string `json:"Serial_Number"`
	ItemStatus     string `json:"Item_Status"`
	ItemCreateDate string `json:"Item_CreateDate"`
	ItemOthers     string `json:"Item_Others"`
}

type BrandCount struct {
	Brand string `json:"brand"`
	Count int64  `json:"count"`
}

type DeviceSummary struct {
	TotalCount        int64        `json:"totalCount"`
	ActiveCount       int64        `json:"activeCount"`
	InactiveCount     int64        `json:"inactiveCount"`
	TypeCount         int64        `json:"typeCount"`
	BrandCount        int64        `json:"brandCount"`
	BrandDistribution []BrandCount `json:"brandDistribution"`
}

type NodeEquipmentCount struct {
	NodeName       string `json:"Node_Name"`
	EquipmentCount int64  `json:"EquipmentCount"`
}

type Activity struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}
