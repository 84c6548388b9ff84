package Controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ArthurLima05/app.renatalyra/Constants"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupFeedbackTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	Models.Migrate(db)
	Models.DB = db
	return db
}

func postFeedback(t *testing.T, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.POST("/api/SubmitFeedback", SubmitFeedback)

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/SubmitFeedback", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestSubmitFeedbackNegativeRatingRaisesOneNotification(t *testing.T) {
	db := setupFeedbackTest(t)
	patient := Models.Patient{Name: "Ana", Phone: "5511999990000"}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	recorder := postFeedback(t, map[string]interface{}{
		"patient_id": patient.ID,
		"rating":     2,
		"comment":    "too long a wait",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	var notifications []Models.Notification
	if err := db.Where("type = ?", Constants.NotificationFeedback).Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("feedback notifications = %d, want 1", len(notifications))
	}
	if notifications[0].Read {
		t.Error("notification created already read")
	}
	if notifications[0].PatientID == nil || *notifications[0].PatientID != patient.ID {
		t.Error("notification not linked to the patient")
	}
}

func TestSubmitFeedbackNeutralRatingRaisesNoNotification(t *testing.T) {
	db := setupFeedbackTest(t)
	patient := Models.Patient{Name: "Bruno", Phone: "5511999990001"}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	recorder := postFeedback(t, map[string]interface{}{
		"patient_id": patient.ID,
		"rating":     3,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	var count int64
	db.Model(&Models.Notification{}).Where("type = ?", Constants.NotificationFeedback).Count(&count)
	if count != 0 {
		t.Errorf("feedback notifications = %d, want 0", count)
	}

	var feedbacks int64
	db.Model(&Models.Feedback{}).Count(&feedbacks)
	if feedbacks != 1 {
		t.Errorf("feedback rows = %d, want 1", feedbacks)
	}
}

func TestSubmitFeedbackUnknownPatient(t *testing.T) {
	setupFeedbackTest(t)

	recorder := postFeedback(t, map[string]interface{}{
		"patient_id": 999,
		"rating":     5,
	})
	if recorder.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", recorder.Code)
	}
}

func TestSubmitFeedbackRecomputesAverageRating(t *testing.T) {
	db := setupFeedbackTest(t)
	patient := Models.Patient{Name: "Carla", Phone: "5511999990002"}
	db.Create(&patient)
	professional := Models.Professional{Name: "Dra. Lyra", Specialty: "Psychology"}
	db.Create(&professional)

	for _, rating := range []int{4, 2} {
		recorder := postFeedback(t, map[string]interface{}{
			"patient_id":      patient.ID,
			"professional_id": professional.ID,
			"rating":          rating,
		})
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
		}
	}

	var updated Models.Professional
	if err := db.First(&updated, professional.ID).Error; err != nil {
		t.Fatalf("load professional: %v", err)
	}
	if updated.AverageRating != 3 {
		t.Errorf("average rating = %v, want 3", updated.AverageRating)
	}
}
