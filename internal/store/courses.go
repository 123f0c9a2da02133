package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"slotify-backend/internal/model"
)

// CourseUpdate carries the optional fields of a course update.
type CourseUpdate struct {
	Name          *string
	ShortName     *string
	Level         *string
	Department    *string
	DurationYears *int
	Description   *string
	IsActive      *bool
}

func (s *gormStore) CreateCourse(ctx context.Context, c *model.Course) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		if isDuplicate(err) {
			return ErrCourseExists
		}
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateCourse(ctx context.Context, uuid string, upd CourseUpdate) (*model.Course, error) {
	var c model.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("uuid = ?", uuid).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to load course: %w", err)
		}
		if upd.Name != nil {
			c.Name = *upd.Name
		}
		if upd.ShortName != nil {
			c.ShortName = *upd.ShortName
		}
		if upd.Level != nil {
			c.Level = *upd.Level
		}
		if upd.Department != nil {
			c.Department = *upd.Department
		}
		if upd.DurationYears != nil {
			c.DurationYears = *upd.DurationYears
		}
		if upd.Description != nil {
			c.Description = *upd.Description
		}
		if upd.IsActive != nil {
			c.IsActive = *upd.IsActive
		}
		if err := tx.Save(&c).Error; err != nil {
			if isDuplicate(err) {
				return ErrCourseExists
			}
			return fmt.Errorf("failed to update course: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *gormStore) ListCourses(ctx context.Context) ([]model.Course, error) {
	var out []model.Course
	if err := s.db.WithContext(ctx).Order("code").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return out, nil
}
