package receipt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/VidyaERP/api-fees/internal/concession"
	"github.com/VidyaERP/api-fees/internal/feetype"
	"github.com/VidyaERP/api-fees/internal/payment"
	"github.com/VidyaERP/api-fees/internal/student"
	"github.com/VidyaERP/api-fees/internal/studentfee"
	"github.com/gorilla/mux"
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
		&concession.Template{},
		&concession.Rule{},
		&studentfee.StudentFeeItem{},
		&payment.Allocation{},
		&payment.ReceiptSequence{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newRouter(db *gorm.DB) *mux.Router {
	paymentHandler := payment.NewHandler(db)
	receiptHandler := NewHandler(db)

	r := mux.NewRouter()
	r.HandleFunc("/payments", paymentHandler.Record).Methods("POST")
	r.HandleFunc("/receipts/{no:.+}", receiptHandler.Reprint).Methods("GET")
	r.HandleFunc("/receipts/{no:.+}", paymentHandler.DeleteReceipt).Methods("DELETE")
	return r
}

func TestReprintGroupsContiguousInstallments(t *testing.T) {
	db := setupDB(t)
	router := newRouter(db)

	tuition := feetype.FeeType{Name: "Tuition", Kind: feetype.KindInstallment}
	admission := feetype.FeeType{Name: "Admission", Kind: feetype.KindOneTime}
	db.Create(&tuition)
	db.Create(&admission)
	stu := student.Student{FirstName: "Asha", Class: "5", IsActive: true}
	db.Create(&stu)

	titles := map[int]string{4: "July", 5: "August", 6: "September"}
	var ids []uint
	for serial := 4; serial <= 6; serial++ {
		item := studentfee.StudentFeeItem{
			StudentID:    stu.ID,
			FeeTypeID:    tuition.ID,
			SerialNumber: serial,
			Title:        titles[serial],
			GrossPayable: 1000,
		}
		item.Recompute()
		db.Create(&item)
		ids = append(ids, item.ID)
	}
	oneOff := studentfee.StudentFeeItem{
		StudentID:    stu.ID,
		FeeTypeID:    admission.ID,
		SerialNumber: 0,
		Title:        "Admission",
		GrossPayable: 500,
	}
	oneOff.Recompute()
	db.Create(&oneOff)
	ids = append(ids, oneOff.ID)

	body, _ := json.Marshal(map[string]interface{}{
		"studentId":       stu.ID,
		"selectedItemIds": ids,
		"totalPaid":       3500,
		"paymentDate":     "2026-07-01",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("payment: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	reprint := httptest.NewRecorder()
	router.ServeHTTP(reprint, httptest.NewRequest(http.MethodGet, "/receipts/All/All/01", nil))
	if reprint.Code != http.StatusOK {
		t.Fatalf("reprint: expected 200, got %d: %s", reprint.Code, reprint.Body.String())
	}

	var resp struct {
		ReceiptNo string `json:"receiptNo"`
		DisplayNo string `json:"displayNo"`
		Voided    bool   `json:"voided"`
		Lines     []Line `json:"lines"`
	}
	if err := json.Unmarshal(reprint.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode reprint: %v", err)
	}
	if resp.DisplayNo != "01" {
		t.Errorf("expected display number 01, got %q", resp.DisplayNo)
	}

	if resp.Voided {
		t.Error("fresh receipt must not read voided")
	}
	if len(resp.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(resp.Lines), resp.Lines)
	}
	if resp.Lines[0].Title != "Payment for July Fee to September Fee" {
		t.Errorf("unexpected run title %q", resp.Lines[0].Title)
	}
	if resp.Lines[0].Paid != 3000 {
		t.Errorf("run total: expected 3000, got %d", resp.Lines[0].Paid)
	}
	if resp.Lines[1].Title != "Admission" || resp.Lines[1].Paid != 500 {
		t.Errorf("unexpected one-time line: %+v", resp.Lines[1])
	}
}

func TestReprintMarksVoidedReceipt(t *testing.T) {
	db := setupDB(t)
	router := newRouter(db)

	ft := feetype.FeeType{Name: "Tuition", Kind: feetype.KindInstallment}
	db.Create(&ft)
	stu := student.Student{FirstName: "Asha", Class: "5", IsActive: true}
	db.Create(&stu)
	item := studentfee.StudentFeeItem{StudentID: stu.ID, FeeTypeID: ft.ID, SerialNumber: 1, Title: "April", GrossPayable: 1000}
	item.Recompute()
	db.Create(&item)

	body, _ := json.Marshal(map[string]interface{}{
		"studentId":       stu.ID,
		"selectedItemIds": []uint{item.ID},
		"totalPaid":       1000,
		"paymentDate":     "2026-04-05",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("payment: expected 201, got %d", rec.Code)
	}

	del := httptest.NewRecorder()
	router.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/receipts/All/All/01", nil))
	if del.Code != http.StatusOK {
		t.Fatalf("void: expected 200, got %d", del.Code)
	}

	reprint := httptest.NewRecorder()
	router.ServeHTTP(reprint, httptest.NewRequest(http.MethodGet, "/receipts/All/All/01", nil))
	if reprint.Code != http.StatusOK {
		t.Fatalf("reprint: expected 200, got %d", reprint.Code)
	}

	var resp struct {
		Voided bool `json:"voided"`
	}
	_ = json.Unmarshal(reprint.Body.Bytes(), &resp)
	if !resp.Voided {
		t.Error("voided receipt must be flagged on reprint")
	}
}

func TestReprintUnknownReceipt(t *testing.T) {
	db := setupDB(t)
	router := newRouter(db)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/receipts/42", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
