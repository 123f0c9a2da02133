package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"slotify-backend/internal/model"
)

// UserUpdate carries the optional fields of a user update. Which of them a
// caller may touch is the handler's problem; the store applies whatever is
// set.
type UserUpdate struct {
	Username      *string
	Email         *string
	FirstName     *string
	MiddleName    *string
	LastName      *string
	BuildingUUID  *string
	CourseUUID    *string // empty string clears the course
	RoomNo        *string
	ContactNo     *string
	ReminderHours *int
	ReminderEmail *string
	DepartureDate *time.Time
	HostName      *string
}

func validRole(role string) bool {
	switch role {
	case model.RoleUser, model.RoleGuest, model.RoleAdmin, model.RoleSuperadmin:
		return true
	}
	return false
}

// CreateUser provisions an account. A nil actor is the bootstrap path and may
// create anything; otherwise only superadmins may mint superadmins. User-role
// accounts must be on the enrollment roster.
func (s *gormStore) CreateUser(ctx context.Context, u *model.User, buildingUUID, courseUUID string, actor *model.User) error {
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if !validRole(u.Role) {
		return ErrUnknownRole
	}
	if u.Role == model.RoleSuperadmin && actor != nil && actor.Role != model.RoleSuperadmin {
		return ErrRoleNotAllowed
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.Role == model.RoleUser {
			var n int64
			if err := tx.Model(&model.EnrolledStudent{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to check enrollment: %w", err)
			}
			if n == 0 {
				return ErrNotEnrolled
			}
		}
		var b model.Building
		if err := tx.Where("uuid = ?", buildingUUID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBuildingNotFound
			}
			return fmt.Errorf("failed to load building: %w", err)
		}
		u.BuildingID = b.ID
		u.Building = b
		if courseUUID != "" {
			var c model.Course
			if err := tx.Where("uuid = ?", courseUUID).First(&c).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCourseNotFound
				}
				return fmt.Errorf("failed to load course: %w", err)
			}
			u.CourseID = &c.ID
			u.Course = &c
		}
		if err := tx.Create(u).Error; err != nil {
			if isDuplicate(err) {
				return ErrUserExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

// userByUUID loads a user with building and course inside the given handle.
func userByUUID(tx *gorm.DB, uuid string) (*model.User, error) {
	var u model.User
	if err := tx.Preload("Building").Preload("Course").Where("uuid = ?", uuid).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (s *gormStore) GetUser(ctx context.Context, uuid string) (*model.User, error) {
	return userByUUID(s.db.WithContext(ctx), uuid)
}

func (s *gormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := s.db.WithContext(ctx).Preload("Building").Preload("Course").
		Order("username").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return out, nil
}

func (s *gormStore) UpdateUser(ctx context.Context, uuid string, upd UserUpdate) (*model.User, error) {
	var out *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := userByUUID(tx, uuid)
		if err != nil {
			return err
		}
		if upd.Username != nil {
			u.Username = *upd.Username
		}
		if upd.Email != nil {
			u.Email = *upd.Email
		}
		if upd.FirstName != nil {
			u.FirstName = *upd.FirstName
		}
		if upd.MiddleName != nil {
			u.MiddleName = *upd.MiddleName
		}
		if upd.LastName != nil {
			u.LastName = *upd.LastName
		}
		if upd.BuildingUUID != nil {
			var b model.Building
			if err := tx.Where("uuid = ?", *upd.BuildingUUID).First(&b).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrBuildingNotFound
				}
				return fmt.Errorf("failed to load building: %w", err)
			}
			u.BuildingID = b.ID
			u.Building = b
		}
		if upd.CourseUUID != nil {
			if *upd.CourseUUID == "" {
				u.CourseID = nil
				u.Course = nil
			} else {
				var c model.Course
				if err := tx.Where("uuid = ?", *upd.CourseUUID).First(&c).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return ErrCourseNotFound
					}
					return fmt.Errorf("failed to load course: %w", err)
				}
				u.CourseID = &c.ID
				u.Course = &c
			}
		}
		if upd.RoomNo != nil {
			u.RoomNo = *upd.RoomNo
		}
		if upd.ContactNo != nil {
			u.ContactNo = *upd.ContactNo
		}
		if upd.ReminderHours != nil {
			u.ReminderHours = *upd.ReminderHours
		}
		if upd.ReminderEmail != nil {
			u.ReminderEmail = *upd.ReminderEmail
		}
		if upd.DepartureDate != nil {
			u.DepartureDate = upd.DepartureDate
		}
		if upd.HostName != nil {
			u.HostName = *upd.HostName
		}
		if err := tx.Save(u).Error; err != nil {
			if isDuplicate(err) {
				return ErrUserExists
			}
			return fmt.Errorf("failed to update user: %w", err)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetRole promotes or demotes a user. Superadmins are untouchable for plain
// admins, in both directions.
func (s *gormStore) SetRole(ctx context.Context, uuid, role string, actor *model.User) (*model.User, error) {
	if !validRole(role) {
		return nil, ErrUnknownRole
	}
	var out *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := userByUUID(tx, uuid)
		if err != nil {
			return err
		}
		if actor != nil && actor.Role != model.RoleSuperadmin {
			if u.Role == model.RoleSuperadmin || role == model.RoleSuperadmin {
				return ErrRoleNotAllowed
			}
		}
		u.Role = role
		if err := tx.Save(u).Error; err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteUser removes an account along with its bookings, reminder logs,
// tokens, and push subscriptions. The deletes are explicit rather than left
// to FK cascades so the behavior is identical on every driver the tests run
// against.
func (s *gormStore) DeleteUser(ctx context.Context, uuid string, actor *model.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := userByUUID(tx, uuid)
		if err != nil {
			return err
		}
		if u.Role == model.RoleSuperadmin && (actor == nil || actor.Role != model.RoleSuperadmin) {
			return ErrRoleNotAllowed
		}
		if err := tx.Where("user_id = ?", u.ID).Delete(&model.Booking{}).Error; err != nil {
			return fmt.Errorf("failed to delete bookings: %w", err)
		}
		if err := tx.Where("user_id = ?", u.ID).Delete(&model.ReminderLog{}).Error; err != nil {
			return fmt.Errorf("failed to delete reminder logs: %w", err)
		}
		if err := tx.Where("user_id = ?", u.ID).Delete(&model.ApiToken{}).Error; err != nil {
			return fmt.Errorf("failed to delete tokens: %w", err)
		}
		if err := tx.Where("user_id = ?", u.ID).Delete(&model.PushSubscription{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscriptions: %w", err)
		}
		if err := tx.Delete(&model.User{}, u.ID).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

// TouchLastSeen records activity without failing the request it rides on.
func (s *gormStore) TouchLastSeen(ctx context.Context, userID int64, at time.Time) {
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_seen", at).Error
	if err != nil {
		log.Printf("Warning: failed to update last_seen for user %d: %v", userID, err)
	}
}
