package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"slotify-backend/internal/model"
)

// BuildingUpdate carries the optional fields of a building update. Nil fields
// are left untouched.
type BuildingUpdate struct {
	Name *string
	Code *string
}

func (s *gormStore) CreateBuilding(ctx context.Context, b *model.Building) error {
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		if isDuplicate(err) {
			return ErrBuildingExists
		}
		return fmt.Errorf("failed to create building: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateBuilding(ctx context.Context, uuid string, upd BuildingUpdate) (*model.Building, error) {
	var b model.Building
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("uuid = ?", uuid).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBuildingNotFound
			}
			return fmt.Errorf("failed to load building: %w", err)
		}
		if upd.Name != nil {
			b.Name = *upd.Name
		}
		if upd.Code != nil {
			b.Code = *upd.Code
		}
		if err := tx.Save(&b).Error; err != nil {
			if isDuplicate(err) {
				return ErrBuildingExists
			}
			return fmt.Errorf("failed to update building: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *gormStore) GetBuilding(ctx context.Context, uuid string) (*model.Building, error) {
	var b model.Building
	if err := s.db.WithContext(ctx).Where("uuid = ?", uuid).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, fmt.Errorf("failed to load building: %w", err)
	}
	return &b, nil
}

func (s *gormStore) ListBuildings(ctx context.Context) ([]BuildingSummary, error) {
	var out []BuildingSummary
	err := s.db.WithContext(ctx).Model(&model.Building{}).
		Select("buildings.uuid, buildings.name, buildings.code, count(machines.id) as machine_count").
		Joins("LEFT JOIN machines ON machines.building_id = buildings.id").
		Group("buildings.id, buildings.uuid, buildings.name, buildings.code").
		Order("buildings.name").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}
	return out, nil
}
