package Models

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	Migrate(db)
	return db
}

func TestFindPatientByPhoneLenient(t *testing.T) {
	db := openTestDB(t)

	// Stored with the ninth digit, as the clinic types it in.
	stored := Patient{Name: "Ana", Phone: "5511999990000"}
	if err := db.Create(&stored).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	// Exact match still wins.
	patient, err := FindPatientByPhoneLenient(db, "5511999990000")
	if err != nil {
		t.Fatalf("exact lookup: %v", err)
	}
	if patient.ID != stored.ID {
		t.Errorf("exact lookup found patient %d, want %d", patient.ID, stored.ID)
	}

	// The gateway reports 12 digits with the ninth digit stripped.
	patient, err = FindPatientByPhoneLenient(db, "551199990000")
	if err != nil {
		t.Fatalf("lenient lookup: %v", err)
	}
	if patient.ID != stored.ID {
		t.Errorf("lenient lookup found patient %d, want %d", patient.ID, stored.ID)
	}

	// Numbers that match neither form stay unknown.
	if _, err := FindPatientByPhoneLenient(db, "551188880000"); err == nil {
		t.Error("expected an error for an unknown number")
	}

	// The retry only applies to 12 digit numbers with the country code.
	if _, err := FindPatientByPhoneLenient(db, "111199990000"); err == nil {
		t.Error("expected an error for a foreign prefix")
	}
}

func TestFindPatientByPhoneIsExact(t *testing.T) {
	db := openTestDB(t)
	db.Create(&Patient{Name: "Ana", Phone: "5511999990000"})

	if _, err := FindPatientByPhone(db, "551199990000"); err == nil {
		t.Error("exact lookup must not apply the ninth digit retry")
	}
}
