package application

import (
	"context"
	"strings"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

type EquipmentInput struct {
	UserID      string `json:"User_ID"`
	Photo       string `json:"Equipe_Photo" validate:"required,dataimage"`
	Name        string `json:"Equipe_Name" validate:"notblank"`
	Type        string `json:"Equipe_Type" validate:"required"`
	CreateDate  string `json:"Equipe_CreatDate"`
	ModelNumber string `json:"Model_Number" validate:"required"`
	Brand       string `json:"Brand" validate:"required"`
}

func (s *InventoryService) ListEquipment(ctx context.Context, filter domain.EquipmentFilter) ([]domain.EquipmentSummary, error) {
	return s.repo.ListEquipment(ctx, filter)
}

func (s *InventoryService) GetEquipment(ctx context.Context, equipeID string) (domain.EquipmentDetail, error) {
	return s.repo.GetEquipmentDetail(ctx, equipeID)
}

func (s *InventoryService) ListAvailableEquipment(ctx context.Context) ([]domain.AvailableEquipment, error) {
	return s.repo.ListAvailableEquipment(ctx)
}

func (s *InventoryService) CreateEquipment(ctx context.Context, in EquipmentInput) (string, error) {
	if err := check(in); err != nil {
		return "", err
	}

	e := domain.Equipment{
		UserID:      in.UserID,
		Photo:       in.Photo,
		Name:        strings.TrimSpace(in.Name),
		Type:        in.Type,
		CreateDate:  defaultString(in.CreateDate, s.timestamp()),
		ModelNumber: strings.TrimSpace(in.ModelNumber),
		Brand:       in.Brand,
	}
	err := s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		if err := equipmentClash(ctx, tx, e, ""); err != nil {
			return err
		}
		id, err := allocate(ctx, tx, domain.EquipmentSeq)
		if err != nil {
			return err
		}
		e.EquipeID = id
		return tx.CreateEquipment(ctx, e)
	})
	if err != nil {
		return "", err
	}
	return e.EquipeID, nil
}

func (s *InventoryService) UpdateEquipment(ctx context.Context, equipeID string, in EquipmentInput) error {
	if err := check(in); err != nil {
		return err
	}

	e := domain.Equipment{
		EquipeID:    equipeID,
		Photo:       in.Photo,
		Name:        strings.TrimSpace(in.Name),
		Type:        in.Type,
		CreateDate:  strings.TrimSpace(in.CreateDate),
		ModelNumber: strings.TrimSpace(in.ModelNumber),
		Brand:       in.Brand,
	}
	return s.repo.WithinTx(ctx, func(tx domain.InventoryRepository) error {
		if err := equipmentClash(ctx, tx, e, equipeID); err != nil {
			return err
		}
		ok, err := tx.UpdateEquipment(ctx, e)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("equipment %s not found", equipeID)
		}
		return nil
	})
}

func (s *InventoryService) DeleteEquipment(ctx context.Context, equipeID string) error {
	ok, err := s.repo.DeleteEquipment(ctx, equipeID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("equipment %s not found", equipeID)
	}
	return nil
}

// equipmentClash reports which of name and model number is already used by
// another equipment.
func equipmentClash(ctx context.Context, repo domain.InventoryRepository, e domain.Equipment, excludeID string) error {
	other, found, err := repo.FindEquipmentClash(ctx, e.Name, e.ModelNumber, excludeID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if other.Name == e.Name {
		return domain.Duplicate("an equipment named %s already exists", e.Name)
	}
	return domain.Duplicate("an equipment with model number %s already exists", e.ModelNumber)
}
