package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"slotify-backend/internal/model"
	"slotify-backend/internal/schedule"
)

// MachineUpdate carries the optional fields of a machine update. Changing the
// slot layout requires SlotCount and SlotTemplate together so the pair can be
// validated as a unit.
type MachineUpdate struct {
	Name         *string
	Code         *string
	Status       *string
	BuildingUUID *string
	SlotCount    *int
	SlotTemplate *string
	ImageURL     *string
}

func validStatus(status string) bool {
	switch status {
	case model.MachineAvailable, model.MachineMaintenance, model.MachineDisabled:
		return true
	}
	return false
}

// machineByUUID loads a machine with its building inside the given handle.
func machineByUUID(tx *gorm.DB, uuid string) (*model.Machine, error) {
	var m model.Machine
	if err := tx.Preload("Building").Where("uuid = ?", uuid).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, fmt.Errorf("failed to load machine: %w", err)
	}
	return &m, nil
}

func (s *gormStore) CreateMachine(ctx context.Context, m *model.Machine, buildingUUID string) error {
	if m.Status == "" {
		m.Status = model.MachineAvailable
	}
	if !validStatus(m.Status) {
		return ErrBadStatus
	}
	if _, err := schedule.ParseTemplate(m.SlotTemplate, m.SlotCount); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.Building
		if err := tx.Where("uuid = ?", buildingUUID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBuildingNotFound
			}
			return fmt.Errorf("failed to load building: %w", err)
		}
		m.BuildingID = b.ID
		if err := tx.Create(m).Error; err != nil {
			if isDuplicate(err) {
				return ErrMachineExists
			}
			return fmt.Errorf("failed to create machine: %w", err)
		}
		m.Building = b
		return nil
	})
}

func (s *gormStore) UpdateMachine(ctx context.Context, uuid string, upd MachineUpdate) (*model.Machine, error) {
	var out *model.Machine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := machineByUUID(tx, uuid)
		if err != nil {
			return err
		}
		if upd.Name != nil {
			m.Name = *upd.Name
		}
		if upd.Code != nil {
			m.Code = *upd.Code
		}
		if upd.Status != nil {
			if !validStatus(*upd.Status) {
				return ErrBadStatus
			}
			m.Status = *upd.Status
		}
		if upd.BuildingUUID != nil {
			var b model.Building
			if err := tx.Where("uuid = ?", *upd.BuildingUUID).First(&b).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrBuildingNotFound
				}
				return fmt.Errorf("failed to load building: %w", err)
			}
			m.BuildingID = b.ID
			m.Building = b
		}
		if upd.SlotCount != nil {
			m.SlotCount = *upd.SlotCount
		}
		if upd.SlotTemplate != nil {
			m.SlotTemplate = *upd.SlotTemplate
		}
		if _, err := schedule.ParseTemplate(m.SlotTemplate, m.SlotCount); err != nil {
			return err
		}
		if upd.ImageURL != nil {
			m.ImageURL = *upd.ImageURL
		}
		if err := tx.Save(m).Error; err != nil {
			if isDuplicate(err) {
				return ErrMachineExists
			}
			return fmt.Errorf("failed to update machine: %w", err)
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteMachine removes a machine that has never been booked or whose
// bookings are all gone. Machines with bookings are retired by status instead
// so history stays intact.
func (s *gormStore) DeleteMachine(ctx context.Context, uuid string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := machineByUUID(tx, uuid)
		if err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&model.Booking{}).Where("machine_id = ?", m.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to count bookings: %w", err)
		}
		if n > 0 {
			return ErrMachineHasBookings
		}
		if err := tx.Delete(&model.Machine{}, m.ID).Error; err != nil {
			return fmt.Errorf("failed to delete machine: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetMachine(ctx context.Context, uuid string) (*model.Machine, error) {
	return machineByUUID(s.db.WithContext(ctx), uuid)
}

func (s *gormStore) ListMachines(ctx context.Context) ([]MachineSummary, error) {
	var machines []model.Machine
	err := s.db.WithContext(ctx).Preload("Building").
		Joins("JOIN buildings ON buildings.id = machines.building_id").
		Order("buildings.name, machines.name").
		Find(&machines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	var counts []struct {
		MachineID int64
		N         int64
	}
	err = s.db.WithContext(ctx).Model(&model.Booking{}).
		Select("machine_id, count(*) as n").
		Group("machine_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	booked := make(map[int64]int64, len(counts))
	for _, c := range counts {
		booked[c.MachineID] = c.N
	}
	out := make([]MachineSummary, 0, len(machines))
	for i := range machines {
		out = append(out, MachineSummary{
			MachineView: machineView(&machines[i]),
			BookedCount: int(booked[machines[i].ID]),
		})
	}
	return out, nil
}

func machineView(m *model.Machine) MachineView {
	return MachineView{
		UUID:         m.UUID,
		Name:         m.Name,
		Code:         m.Code,
		Status:       m.Status,
		Building:     m.Building.Name,
		BuildingUUID: m.Building.UUID,
		SlotCount:    m.SlotCount,
		SlotTemplate: m.SlotTemplate,
		ImageURL:     m.ImageURL,
	}
}
