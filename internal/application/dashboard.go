package application

import (
	"context"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

func (s *InventoryService) DeviceSummary(ctx context.Context) (domain.DeviceSummary, error) {
	return s.repo.DeviceSummary(ctx, domain.DefaultItemStatus)
}

func (s *InventoryService) EquipmentByNode(ctx context.Context) ([]domain.NodeEquipmentCount, error) {
	return s.repo.EquipmentByNode(ctx)
}

func (s *InventoryService) RecentActivities(ctx context.Context) ([]domain.Activity, error) {
	return s.repo.RecentActivities(ctx, RecentActivityLimit)
}

// Placements pages through objects and their items, ObjectsPageSize rows at a time.
func (s *InventoryService) Placements(ctx context.Context, filter domain.PlacementFilter) ([]domain.Placement, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	return s.repo.ListPlacements(ctx, filter, ObjectsPageSize)
}
