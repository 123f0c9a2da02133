package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"slotify-backend/internal/model"
)

// StudentUpdate carries the optional fields of a roster row update.
type StudentUpdate struct {
	FullName *string
	Email    *string
}

func (s *gormStore) AddStudent(ctx context.Context, st *model.EnrolledStudent) error {
	if err := s.db.WithContext(ctx).Create(st).Error; err != nil {
		if isDuplicate(err) {
			return ErrStudentExists
		}
		return fmt.Errorf("failed to add student: %w", err)
	}
	return nil
}

// AddStudents bulk-inserts roster rows, silently keeping existing emails.
// Returns how many rows were actually new.
func (s *gormStore) AddStudents(ctx context.Context, batch []model.EnrolledStudent) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&batch)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to bulk add students: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (s *gormStore) GetStudentByEmail(ctx context.Context, email string) (*model.EnrolledStudent, error) {
	var st model.EnrolledStudent
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	return &st, nil
}

func (s *gormStore) ListStudents(ctx context.Context) ([]model.EnrolledStudent, error) {
	var out []model.EnrolledStudent
	if err := s.db.WithContext(ctx).Order("email").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return out, nil
}

func (s *gormStore) UpdateStudent(ctx context.Context, email string, upd StudentUpdate) (*model.EnrolledStudent, error) {
	var st model.EnrolledStudent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).First(&st).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("failed to load student: %w", err)
		}
		if upd.FullName != nil {
			st.FullName = *upd.FullName
		}
		if upd.Email != nil {
			st.Email = *upd.Email
		}
		if err := tx.Save(&st).Error; err != nil {
			if isDuplicate(err) {
				return ErrStudentExists
			}
			return fmt.Errorf("failed to update student: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *gormStore) DeleteStudent(ctx context.Context, email string) error {
	res := s.db.WithContext(ctx).Where("email = ?", email).Delete(&model.EnrolledStudent{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete student: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// ClearStudents wipes the roster, typically before importing a new year's
// list. Existing accounts are untouched.
func (s *gormStore) ClearStudents(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("1 = 1").Delete(&model.EnrolledStudent{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear students: %w", res.Error)
	}
	return res.RowsAffected, nil
}
