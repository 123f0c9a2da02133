package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"slotify-backend/internal/db"
	"slotify-backend/internal/model"
)

// newTestDB opens a private in-memory database with the full schema applied.
// Naming the database after the test keeps parallel tests apart.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func testRules() Rules {
	return Rules{
		HorizonDays:        90,
		MaxPerDay:          1,
		WeeklyMachineLimit: 3,
		Location:           time.UTC,
	}
}

// fixtures is the standing cast of the store tests: two buildings, two
// machines in the first one, and residents on both sides of the building
// boundary.
type fixtures struct {
	store    Store
	building model.Building
	other    model.Building
	machine  model.Machine
	second   model.Machine
	resident model.User
	roommate model.User
	outsider model.User
	admin    model.User
}

func seedFixtures(t *testing.T, gdb *gorm.DB) *fixtures {
	t.Helper()
	f := &fixtures{store: NewGormStore(gdb, testRules())}

	f.building = model.Building{Name: "Ashoka", Code: "ASH"}
	require.NoError(t, gdb.Create(&f.building).Error)
	f.other = model.Building{Name: "Rohini", Code: "ROH"}
	require.NoError(t, gdb.Create(&f.other).Error)

	f.machine = model.Machine{
		Name:         "Ashoka GF Washer",
		Code:         "ASH-W1",
		BuildingID:   f.building.ID,
		Status:       model.MachineAvailable,
		SlotCount:    3,
		SlotTemplate: "07:00-10:00,10:00-13:00,17:00-20:00",
	}
	require.NoError(t, gdb.Create(&f.machine).Error)
	f.second = model.Machine{
		Name:         "Ashoka FF Washer",
		Code:         "ASH-W2",
		BuildingID:   f.building.ID,
		Status:       model.MachineAvailable,
		SlotCount:    3,
		SlotTemplate: "07:00-10:00,10:00-13:00,17:00-20:00",
	}
	require.NoError(t, gdb.Create(&f.second).Error)

	f.resident = model.User{
		Username:   "asha",
		Email:      "bmat2301@isibang.ac.in",
		FirstName:  "Asha",
		LastName:   "Verma",
		Role:       model.RoleUser,
		BuildingID: f.building.ID,
		RoomNo:     "114",
		ContactNo:  "9876500011",
	}
	require.NoError(t, gdb.Create(&f.resident).Error)
	f.roommate = model.User{
		Username:   "ravi",
		Email:      "mmat2405@isibang.ac.in",
		FirstName:  "Ravi",
		LastName:   "Iyer",
		Role:       model.RoleUser,
		BuildingID: f.building.ID,
	}
	require.NoError(t, gdb.Create(&f.roommate).Error)
	f.outsider = model.User{
		Username:   "dev",
		Email:      "mqms2501@isibang.ac.in",
		FirstName:  "Dev",
		LastName:   "Patel",
		Role:       model.RoleUser,
		BuildingID: f.other.ID,
	}
	require.NoError(t, gdb.Create(&f.outsider).Error)
	f.admin = model.User{
		Username:   "warden",
		Email:      "warden@isibang.ac.in",
		FirstName:  "Meera",
		Role:       model.RoleAdmin,
		BuildingID: f.other.ID,
	}
	require.NoError(t, gdb.Create(&f.admin).Error)

	return f
}

// testNow is a Wednesday morning; fixture dates are derived from it so the
// weekly limit tests know which week they are in.
var testNow = time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

func daysFromNow(n int) string {
	return testNow.AddDate(0, 0, n).Format("2006-01-02")
}
