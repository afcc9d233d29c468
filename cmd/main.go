package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/VidyaERP/api-fees/internal/auth"
	"github.com/VidyaERP/api-fees/internal/concession"
	"github.com/VidyaERP/api-fees/internal/feestructure"
	"github.com/VidyaERP/api-fees/internal/feetype"
	"github.com/VidyaERP/api-fees/internal/installment"
	"github.com/VidyaERP/api-fees/internal/payment"
	"github.com/VidyaERP/api-fees/internal/receipt"
	"github.com/VidyaERP/api-fees/internal/student"
	"github.com/VidyaERP/api-fees/internal/studentfee"
	"github.com/VidyaERP/api-fees/internal/user"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=fees port=5432 sslmode=disable"
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&user.User{},
		&student.Student{},
		&feetype.FeeType{},
		&installment.Definition{},
		&concession.Template{},
		&concession.Rule{},
		&studentfee.StudentFeeItem{},
		&feestructure.ClassFeeStructure{},
		&payment.Allocation{},
		&payment.ReceiptSequence{},
	); err != nil {
		log.Fatal("failed to migrate:", err)
	}

	// Handlers
	userHandler := user.NewHandler(db)
	studentHandler := student.NewHandler(db)
	feeTypeHandler := feetype.NewHandler(db)
	installmentHandler := installment.NewHandler(db)
	concessionHandler := concession.NewHandler(db)
	studentFeeHandler := studentfee.NewHandler(db)
	structureHandler := feestructure.NewHandler(db)
	paymentHandler := payment.NewHandler(db)
	receiptHandler := receipt.NewHandler(db)

	// Router
	r := mux.NewRouter()
	r.HandleFunc("/login", userHandler.Login).Methods("POST", "OPTIONS")

	api := r.NewRoute().Subrouter()
	api.Use(auth.Middleware)

	admin := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAdmin(h)
	}

	// Portal users
	api.Handle("/users", admin(userHandler.Create)).Methods("POST", "OPTIONS")

	// Students
	api.Handle("/students", admin(studentHandler.Create)).Methods("POST", "OPTIONS")
	api.HandleFunc("/students", studentHandler.List).Methods("GET")
	api.HandleFunc("/students/{id}", studentHandler.FindByID).Methods("GET")
	api.Handle("/students/{id}", admin(studentHandler.Update)).Methods("PUT", "OPTIONS")
	api.Handle("/students/{id}", admin(studentHandler.Delete)).Methods("DELETE", "OPTIONS")

	// Fee types and installment schedules
	api.Handle("/fee-types", admin(feeTypeHandler.Create)).Methods("POST", "OPTIONS")
	api.HandleFunc("/fee-types", feeTypeHandler.List).Methods("GET")
	api.Handle("/fee-types/{id}", admin(feeTypeHandler.Update)).Methods("PUT", "OPTIONS")
	api.Handle("/fee-types/{id}", admin(feeTypeHandler.Delete)).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/fee-types/{id}/installments", installmentHandler.ListForFeeType).Methods("GET")
	api.Handle("/fee-types/{id}/schedule", admin(installmentHandler.Regenerate)).Methods("POST", "OPTIONS")

	// Concession templates
	api.Handle("/concessions", admin(concessionHandler.Create)).Methods("POST", "OPTIONS")
	api.HandleFunc("/concessions", concessionHandler.List).Methods("GET")
	api.Handle("/concessions/{id}", admin(concessionHandler.Update)).Methods("PUT", "OPTIONS")
	api.Handle("/concessions/{id}", admin(concessionHandler.Delete)).Methods("DELETE", "OPTIONS")

	// Student fee ledger
	api.HandleFunc("/students/{id}/fees", studentFeeHandler.ListForStudent).Methods("GET")
	api.Handle("/students/{id}/fees", admin(studentFeeHandler.AddForStudent)).Methods("POST", "OPTIONS")
	api.Handle("/student-fees/{id}", admin(studentFeeHandler.Update)).Methods("PUT", "OPTIONS")
	api.Handle("/student-fees/{id}", admin(studentFeeHandler.Delete)).Methods("DELETE", "OPTIONS")

	// Class fee structures
	api.Handle("/class-fee-structures", admin(structureHandler.Assign)).Methods("POST", "OPTIONS")
	api.HandleFunc("/class-fee-structures", structureHandler.List).Methods("GET")

	// Payments and receipts
	api.HandleFunc("/payments", paymentHandler.Record).Methods("POST", "OPTIONS")
	api.HandleFunc("/students/{id}/payments", paymentHandler.HistoryForStudent).Methods("GET")
	// Receipt numbers are scope-qualified ("branch/year/NN"), so the var
	// pattern must span slashes.
	api.HandleFunc("/receipts/{no:.+}", receiptHandler.Reprint).Methods("GET")
	api.Handle("/receipts/{no:.+}", admin(paymentHandler.DeleteReceipt)).Methods("DELETE", "OPTIONS")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Println("Server running on http://localhost:" + port)
	log.Fatal(http.ListenAndServe(":"+port, c.Handler(r)))
}
