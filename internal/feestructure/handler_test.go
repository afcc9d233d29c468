package feestructure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/VidyaERP/api-fees/internal/feetype"
	"github.com/VidyaERP/api-fees/internal/installment"
	"github.com/VidyaERP/api-fees/internal/student"
	"github.com/VidyaERP/api-fees/internal/studentfee"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&student.Student{},
		&feetype.FeeType{},
		&installment.Definition{},
		&studentfee.StudentFeeItem{},
		&ClassFeeStructure{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func postAssign(t *testing.T, h *Handler, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/class-fee-structures", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Assign(rec, req)
	return rec
}

func TestAssignFansOutInstallments(t *testing.T) {
	db := setupDB(t)
	h := NewHandler(db)

	ft := feetype.FeeType{Name: "Tuition", Kind: feetype.KindInstallment}
	db.Create(&ft)
	for _, name := range []string{"Asha", "Bala", "Charu"} {
		if err := db.Create(&student.Student{AdmissionNo: "ADM-" + name, FirstName: name, Class: "5", IsActive: true}).Error; err != nil {
			t.Fatalf("failed to seed student: %v", err)
		}
	}

	rec := postAssign(t, h, map[string]interface{}{
		"feeTypeId":        ft.ID,
		"class":            "5",
		"totalAmount":      10000,
		"installmentCount": 3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Assigned int `json:"assigned"`
		Skipped  int `json:"skipped"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Assigned != 3 || resp.Skipped != 0 {
		t.Fatalf("expected 3 assigned / 0 skipped, got %d/%d", resp.Assigned, resp.Skipped)
	}

	// The schedule was derived and persisted: 3 definitions per fee type,
	// 3 ledger rows per student, amounts split with the remainder first.
	var defs []installment.Definition
	db.Order("number ASC").Find(&defs)
	if len(defs) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(defs))
	}
	if defs[0].Amount != 3340 || defs[1].Amount != 3330 || defs[2].Amount != 3330 {
		t.Errorf("unexpected split: %d/%d/%d", defs[0].Amount, defs[1].Amount, defs[2].Amount)
	}

	var items []studentfee.StudentFeeItem
	db.Find(&items)
	if len(items) != 9 {
		t.Fatalf("expected 9 ledger rows, got %d", len(items))
	}
	for _, it := range items {
		if it.Status != studentfee.StatusUnpaid || it.DueAmount != it.GrossPayable {
			t.Errorf("fresh ledger row must be Unpaid with full due, got %s/%d", it.Status, it.DueAmount)
		}
	}
}

func TestAssignIsIdempotentPerStudent(t *testing.T) {
	db := setupDB(t)
	h := NewHandler(db)

	ft := feetype.FeeType{Name: "Tuition", Kind: feetype.KindInstallment}
	db.Create(&ft)
	if err := db.Create(&student.Student{AdmissionNo: "ADM-Asha", FirstName: "Asha", Class: "5", IsActive: true}).Error; err != nil {
		t.Fatalf("failed to seed student: %v", err)
	}

	body := map[string]interface{}{
		"feeTypeId":        ft.ID,
		"class":            "5",
		"totalAmount":      12000,
		"installmentCount": 12,
	}
	if rec := postAssign(t, h, body); rec.Code != http.StatusCreated {
		t.Fatalf("first assign: expected 201, got %d", rec.Code)
	}

	// A new student joins; re-posting must only touch them.
	if err := db.Create(&student.Student{AdmissionNo: "ADM-Bala", FirstName: "Bala", Class: "5", IsActive: true}).Error; err != nil {
		t.Fatalf("failed to seed student: %v", err)
	}

	rec := postAssign(t, h, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("second assign: expected 201, got %d", rec.Code)
	}
	var resp struct {
		Assigned int `json:"assigned"`
		Skipped  int `json:"skipped"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Assigned != 1 || resp.Skipped != 1 {
		t.Fatalf("expected 1 assigned / 1 skipped, got %d/%d", resp.Assigned, resp.Skipped)
	}

	var count int64
	db.Model(&studentfee.StudentFeeItem{}).Count(&count)
	if count != 24 {
		t.Fatalf("expected 24 ledger rows total, got %d", count)
	}
}

func TestAssignOneTimeFee(t *testing.T) {
	db := setupDB(t)
	h := NewHandler(db)

	ft := feetype.FeeType{Name: "Admission", Kind: feetype.KindOneTime}
	db.Create(&ft)
	db.Create(&student.Student{FirstName: "Asha", Class: "5", IsActive: true})

	rec := postAssign(t, h, map[string]interface{}{
		"feeTypeId":   ft.ID,
		"class":       "5",
		"totalAmount": 5000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var item studentfee.StudentFeeItem
	if err := db.First(&item).Error; err != nil {
		t.Fatalf("expected one ledger row: %v", err)
	}
	if item.SerialNumber != 0 || item.GrossPayable != 5000 || item.Title != "Admission" {
		t.Fatalf("unexpected one-time row: %+v", item)
	}
}

func TestAssignOneTimeRequiresAmount(t *testing.T) {
	db := setupDB(t)
	h := NewHandler(db)

	ft := feetype.FeeType{Name: "Admission", Kind: feetype.KindOneTime}
	db.Create(&ft)

	rec := postAssign(t, h, map[string]interface{}{
		"feeTypeId": ft.ID,
		"class":     "5",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAssignUnknownFeeType(t *testing.T) {
	db := setupDB(t)
	h := NewHandler(db)

	rec := postAssign(t, h, map[string]interface{}{
		"feeTypeId":   999,
		"class":       "5",
		"totalAmount": 1000,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
