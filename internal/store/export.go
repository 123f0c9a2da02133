package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"slotify-backend/internal/model"
)

// Export serializes the whole dataset into a portable snapshot. Rows carry
// UUID references instead of integer keys so the snapshot survives a restore
// into a database with different sequences.
func (s *gormStore) Export(ctx context.Context, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{ExportedAt: now}
	db := s.db.WithContext(ctx)

	var buildings []model.Building
	if err := db.Order("name").Find(&buildings).Error; err != nil {
		return nil, fmt.Errorf("failed to export buildings: %w", err)
	}
	buildingUUID := make(map[int64]string, len(buildings))
	for _, b := range buildings {
		buildingUUID[b.ID] = b.UUID
		snap.Buildings = append(snap.Buildings, BuildingExport{UUID: b.UUID, Name: b.Name, Code: b.Code})
	}

	var courses []model.Course
	if err := db.Order("code").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to export courses: %w", err)
	}
	courseUUID := make(map[int64]string, len(courses))
	for _, c := range courses {
		courseUUID[c.ID] = c.UUID
		snap.Courses = append(snap.Courses, CourseExport{
			UUID:          c.UUID,
			Code:          c.Code,
			Name:          c.Name,
			ShortName:     c.ShortName,
			Level:         c.Level,
			Department:    c.Department,
			DurationYears: c.DurationYears,
			Description:   c.Description,
			IsActive:      c.IsActive,
		})
	}

	var users []model.User
	if err := db.Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	userUUID := make(map[int64]string, len(users))
	for _, u := range users {
		userUUID[u.ID] = u.UUID
		exp := UserExport{
			UUID:          u.UUID,
			Username:      u.Username,
			Email:         u.Email,
			FirstName:     u.FirstName,
			MiddleName:    u.MiddleName,
			LastName:      u.LastName,
			Role:          u.Role,
			BuildingUUID:  buildingUUID[u.BuildingID],
			RoomNo:        u.RoomNo,
			ContactNo:     u.ContactNo,
			ReminderHours: u.ReminderHours,
			ReminderEmail: u.ReminderEmail,
			DepartureDate: u.DepartureDate,
			HostName:      u.HostName,
		}
		if u.CourseID != nil {
			exp.CourseUUID = courseUUID[*u.CourseID]
		}
		snap.Users = append(snap.Users, exp)
	}

	var machines []model.Machine
	if err := db.Order("code").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to export machines: %w", err)
	}
	machineUUID := make(map[int64]string, len(machines))
	for _, m := range machines {
		machineUUID[m.ID] = m.UUID
		snap.Machines = append(snap.Machines, MachineExport{
			UUID:         m.UUID,
			Name:         m.Name,
			Code:         m.Code,
			BuildingUUID: buildingUUID[m.BuildingID],
			Status:       m.Status,
			SlotCount:    m.SlotCount,
			SlotTemplate: m.SlotTemplate,
			ImageURL:     m.ImageURL,
		})
	}

	var students []model.EnrolledStudent
	if err := db.Order("email").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to export students: %w", err)
	}
	for _, st := range students {
		snap.Students = append(snap.Students, StudentExport{UUID: st.UUID, FullName: st.FullName, Email: st.Email})
	}

	var bookings []model.Booking
	if err := db.Order("date, slot_number").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to export bookings: %w", err)
	}
	for _, b := range bookings {
		snap.Bookings = append(snap.Bookings, BookingExport{
			UUID:        b.UUID,
			MachineUUID: machineUUID[b.MachineID],
			UserUUID:    userUUID[b.UserID],
			Date:        b.Date,
			SlotNumber:  b.SlotNumber,
		})
	}

	return snap, nil
}

// Import restores a snapshot into the database. Rows whose UUID already
// exists are kept as they are; rows with dangling references or conflicting
// unique fields are skipped and reported, never fatal. Inserts go through ON
// CONFLICT DO NOTHING, so a conflict cannot abort the surrounding
// transaction, and RowsAffected says whether the row actually landed.
func (s *gormStore) Import(ctx context.Context, snap *Snapshot) (*ImportReport, error) {
	report := &ImportReport{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ignoreConflicts := clause.OnConflict{DoNothing: true}

		buildingID := make(map[string]int64)
		var existingBuildings []model.Building
		if err := tx.Find(&existingBuildings).Error; err != nil {
			return fmt.Errorf("failed to load buildings: %w", err)
		}
		for _, b := range existingBuildings {
			buildingID[b.UUID] = b.ID
		}
		for _, exp := range snap.Buildings {
			if _, ok := buildingID[exp.UUID]; ok {
				continue
			}
			b := model.Building{UUID: exp.UUID, Name: exp.Name, Code: exp.Code}
			res := tx.Clauses(ignoreConflicts).Create(&b)
			if res.Error != nil {
				return fmt.Errorf("failed to import building: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				report.Skipped = append(report.Skipped, fmt.Sprintf("building %s: name or code in use", exp.UUID))
				continue
			}
			buildingID[b.UUID] = b.ID
			report.Buildings++
		}

		courseID := make(map[string]int64)
		var existingCourses []model.Course
		if err := tx.Find(&existingCourses).Error; err != nil {
			return fmt.Errorf("failed to load courses: %w", err)
		}
		for _, c := range existingCourses {
			courseID[c.UUID] = c.ID
		}
		for _, exp := range snap.Courses {
			if _, ok := courseID[exp.UUID]; ok {
				continue
			}
			c := model.Course{
				UUID:          exp.UUID,
				Code:          exp.Code,
				Name:          exp.Name,
				ShortName:     exp.ShortName,
				Level:         exp.Level,
				Department:    exp.Department,
				DurationYears: exp.DurationYears,
				Description:   exp.Description,
				IsActive:      exp.IsActive,
			}
			res := tx.Clauses(ignoreConflicts).Create(&c)
			if res.Error != nil {
				return fmt.Errorf("failed to import course: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				report.Skipped = append(report.Skipped, fmt.Sprintf("course %s: code in use", exp.UUID))
				continue
			}
			courseID[c.UUID] = c.ID
			report.Courses++
		}

		userID := make(map[string]int64)
		var existingUsers []model.User
		if err := tx.Find(&existingUsers).Error; err != nil {
			return fmt.Errorf("failed to load users: %w", err)
		}
		for _, u := range existingUsers {
			userID[u.UUID] = u.ID
		}
		for _, exp := range snap.Users {
			if _, ok := userID[exp.UUID]; ok {
				continue
			}
			bid, ok := buildingID[exp.BuildingUUID]
			if !ok {
				report.Skipped = append(report.Skipped, fmt.Sprintf("user %s: unknown building %s", exp.Username, exp.BuildingUUID))
				continue
			}
			u := model.User{
				UUID:          exp.UUID,
				Username:      exp.Username,
				Email:         exp.Email,
				FirstName:     exp.FirstName,
				MiddleName:    exp.MiddleName,
				LastName:      exp.LastName,
				Role:          exp.Role,
				BuildingID:    bid,
				RoomNo:        exp.RoomNo,
				ContactNo:     exp.ContactNo,
				ReminderHours: exp.ReminderHours,
				ReminderEmail: exp.ReminderEmail,
				DepartureDate: exp.DepartureDate,
				HostName:      exp.HostName,
			}
			if exp.CourseUUID != "" {
				if cid, ok := courseID[exp.CourseUUID]; ok {
					u.CourseID = &cid
				}
			}
			res := tx.Clauses(ignoreConflicts).Create(&u)
			if res.Error != nil {
				return fmt.Errorf("failed to import user: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				report.Skipped = append(report.Skipped, fmt.Sprintf("user %s: username or email in use", exp.Username))
				continue
			}
			userID[u.UUID] = u.ID
			report.Users++
		}

		machineID := make(map[string]int64)
		var existingMachines []model.Machine
		if err := tx.Find(&existingMachines).Error; err != nil {
			return fmt.Errorf("failed to load machines: %w", err)
		}
		for _, m := range existingMachines {
			machineID[m.UUID] = m.ID
		}
		for _, exp := range snap.Machines {
			if _, ok := machineID[exp.UUID]; ok {
				continue
			}
			bid, ok := buildingID[exp.BuildingUUID]
			if !ok {
				report.Skipped = append(report.Skipped, fmt.Sprintf("machine %s: unknown building %s", exp.Code, exp.BuildingUUID))
				continue
			}
			m := model.Machine{
				UUID:         exp.UUID,
				Name:         exp.Name,
				Code:         exp.Code,
				BuildingID:   bid,
				Status:       exp.Status,
				SlotCount:    exp.SlotCount,
				SlotTemplate: exp.SlotTemplate,
				ImageURL:     exp.ImageURL,
			}
			res := tx.Clauses(ignoreConflicts).Create(&m)
			if res.Error != nil {
				return fmt.Errorf("failed to import machine: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				report.Skipped = append(report.Skipped, fmt.Sprintf("machine %s: name or code in use", exp.Code))
				continue
			}
			machineID[m.UUID] = m.ID
			report.Machines++
		}

		for _, exp := range snap.Students {
			st := model.EnrolledStudent{UUID: exp.UUID, FullName: exp.FullName, Email: exp.Email}
			res := tx.Clauses(ignoreConflicts).Create(&st)
			if res.Error != nil {
				return fmt.Errorf("failed to import student: %w", res.Error)
			}
			if res.RowsAffected > 0 {
				report.Students++
			}
		}

		existingBookings := make(map[string]bool)
		var bookingUUIDs []string
		if err := tx.Model(&model.Booking{}).Pluck("uuid", &bookingUUIDs).Error; err != nil {
			return fmt.Errorf("failed to load bookings: %w", err)
		}
		for _, u := range bookingUUIDs {
			existingBookings[u] = true
		}
		for _, exp := range snap.Bookings {
			if existingBookings[exp.UUID] {
				continue
			}
			mid, ok := machineID[exp.MachineUUID]
			if !ok {
				report.Skipped = append(report.Skipped, fmt.Sprintf("booking %s: unknown machine %s", exp.UUID, exp.MachineUUID))
				continue
			}
			uid, ok := userID[exp.UserUUID]
			if !ok {
				report.Skipped = append(report.Skipped, fmt.Sprintf("booking %s: unknown user %s", exp.UUID, exp.UserUUID))
				continue
			}
			b := model.Booking{
				UUID:       exp.UUID,
				MachineID:  mid,
				UserID:     uid,
				Date:       exp.Date,
				SlotNumber: exp.SlotNumber,
			}
			res := tx.Clauses(ignoreConflicts).Create(&b)
			if res.Error != nil {
				return fmt.Errorf("failed to import booking: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				report.Skipped = append(report.Skipped, fmt.Sprintf("booking %s: slot already booked", exp.UUID))
				continue
			}
			report.Bookings++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
