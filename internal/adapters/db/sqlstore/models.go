package sqlstore

import (
	"database/sql"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

type RoleModel struct {
	RoleID   int    `gorm:"column:role_id;primaryKey"`
	Rolename string `gorm:"column:rolename"`
}

func (RoleModel) TableName() string { return "role" }

type UserModel struct {
	UserID      string         `gorm:"column:user_id;primaryKey"`
	Username    string         `gorm:"column:username"`
	Password    string         `gorm:"column:password"`
	Name        string         `gorm:"column:name"`
	TelNumber   string         `gorm:"column:tel_number"`
	Email       string         `gorm:"column:email"`
	RoleID      int            `gorm:"column:role_id"`
	AccessToken sql.NullString `gorm:"column:access_token"`
}

func (UserModel) TableName() string { return "user_nt" }

func (m UserModel) toDomain() domain.User {
	return domain.User{
		UserID:       m.UserID,
		Username:     m.Username,
		PasswordHash: m.Password,
		Name:         m.Name,
		TelNumber:    m.TelNumber,
		Email:        m.Email,
		RoleID:       m.RoleID,
		AccessToken:  m.AccessToken.String,
	}
}

type EquipmentModel struct {
	EquipeID    string `gorm:"column:equipe_id;primaryKey"`
	UserID      string `gorm:"column:user_id"`
	Photo       string `gorm:"column:equipe_photo"`
	Name        string `gorm:"column:equipe_name"`
	Type        string `gorm:"column:equipe_type"`
	CreateDate  string `gorm:"column:equipe_creatdate"`
	ModelNumber string `gorm:"column:model_number"`
	Brand       string `gorm:"column:brand"`
}

func (EquipmentModel) TableName() string { return "equipement" }

func equipmentModel(v domain.Equipment) EquipmentModel {
	return EquipmentModel{
		EquipeID:    v.EquipeID,
		UserID:      v.UserID,
		Photo:       v.Photo,
		Name:        v.Name,
		Type:        v.Type,
		CreateDate:  v.CreateDate,
		ModelNumber: v.ModelNumber,
		Brand:       v.Brand,
	}
}

func (m EquipmentModel) toDomain() domain.Equipment {
	return domain.Equipment{
		EquipeID:    m.EquipeID,
		UserID:      m.UserID,
		Photo:       m.Photo,
		Name:        m.Name,
		Type:        m.Type,
		CreateDate:  m.CreateDate,
		ModelNumber: m.ModelNumber,
		Brand:       m.Brand,
	}
}

type ItemModel struct {
	ItemID       string `gorm:"column:item_id;primaryKey"`
	UserID       string `gorm:"column:user_id"`
	EquipeID     string `gorm:"column:equipe_id"`
	SerialNumber string `gorm:"column:serial_number"`
	CreateDate   string `gorm:"column:item_createdate"`
	Status       string `gorm:"column:item_status"`
	Others       string `gorm:"column:item_others"`
	ObjectID     string `gorm:"column:object_id"`
}

func (ItemModel) TableName() string { return "item" }

func itemModel(v domain.Item) ItemModel {
	return ItemModel{
		ItemID:       v.ItemID,
		UserID:       v.UserID,
		EquipeID:     v.EquipeID,
		SerialNumber: v.SerialNumber,
		CreateDate:   v.CreateDate,
		Status:       v.Status,
		Others:       v.Others,
		ObjectID:     v.ObjectID,
	}
}

func (m ItemModel) toDomain() domain.Item {
	return domain.Item{
		ItemID:       m.ItemID,
		UserID:       m.UserID,
		EquipeID:     m.EquipeID,
		SerialNumber: m.SerialNumber,
		CreateDate:   m.CreateDate,
		Status:       m.Status,
		Others:       m.Others,
		ObjectID:     m.ObjectID,
	}
}

type ItemHistoryModel struct {
	StatusID   string `gorm:"column:statusid;primaryKey"`
	UserID     string `gorm:"column:user_id"`
	EquipeID   string `gorm:"column:equipe_id"`
	ItemID     string `gorm:"column:item_id"`
	ObjectID   string `gorm:"column:object_id"`
	CreateDate string `gorm:"column:item_history_createdate"`
	Other      string `gorm:"column:item_history_other"`
	Status     string `gorm:"column:item_history_status"`
}

func (ItemHistoryModel) TableName() string { return "item_history" }

type NoteModel struct {
	NoteID           string `gorm:"column:note_id;primaryKey"`
	UserID           string `gorm:"column:user_id"`
	Head             string `gorm:"column:note_head"`
	Body             string `gorm:"column:note"`
	CreateDate       string `gorm:"column:note_createdate"`
	LastModifiedDate string `gorm:"column:note_lastmodifieddate"`
}

func (NoteModel) TableName() string { return "note" }

func (m NoteModel) toDomain() domain.Note {
	return domain.Note{
		NoteID:           m.NoteID,
		UserID:           m.UserID,
		Head:             m.Head,
		Body:             m.Body,
		CreateDate:       m.CreateDate,
		LastModifiedDate: m.LastModifiedDate,
	}
}

type NoteImageModel struct {
	ImageID   string `gorm:"column:image_id;primaryKey"`
	NoteID    string `gorm:"column:note_id"`
	ImagePath string `gorm:"column:image_path"`
}

func (NoteImageModel) TableName() string { return "note_images" }

type NodeModel struct {
	NodeID   string `gorm:"column:node_id;primaryKey"`
	Name     string `gorm:"column:node_name"`
	Location string `gorm:"column:node_location"`
	Building string `gorm:"column:node_building"`
}

func (NodeModel) TableName() string { return "node" }

func (m NodeModel) toDomain() domain.Node {
	return domain.Node{NodeID: m.NodeID, Name: m.Name, Location: m.Location, Building: m.Building}
}

type RoomModel struct {
	RoomID string `gorm:"column:room_id;primaryKey"`
	NodeID string `gorm:"column:node_id"`
	Floor  string `gorm:"column:room_floor"`
	Name   string `gorm:"column:room_name"`
}

func (RoomModel) TableName() string { return "room" }

func (m RoomModel) toDomain() domain.Room {
	return domain.Room{RoomID: m.RoomID, NodeID: m.NodeID, Floor: m.Floor, Name: m.Name}
}

type ObjectModel struct {
	ObjectID string `gorm:"column:object_id;primaryKey"`
	NodeID   string `gorm:"column:node_id"`
	RoomID   string `gorm:"column:room_id"`
	Name     string `gorm:"column:object_name"`
	Type     string `gorm:"column:object_type"`
	Others   string `gorm:"column:object_others"`
}

func (ObjectModel) TableName() string { return "object" }

func (m ObjectModel) toDomain() domain.Object {
	return domain.Object{ObjectID: m.ObjectID, NodeID: m.NodeID, RoomID: m.RoomID, Name: m.Name, Type: m.Type, Others: m.Others}
}
