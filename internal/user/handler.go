package user

import (
	"encoding/json"
	"net/http"

	"github.com/VidyaERP/api-fees/internal/auth"
	"github.com/VidyaERP/api-fees/internal/utils"
	"gorm.io/gorm"
)

// Handler wraps DB and repository.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

// NewHandler returns an initialized handler.
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
	Branch   string `json:"branch"`
}

// Login issues a JWT for valid credentials.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	u, err := h.Repository.FindByEmail(h.DB, req.Email)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if !utils.CheckPassword(u.Password, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken(u.ID, u.Name, u.IsAdmin)
	if err != nil {
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// Create registers a portal user (admin only). A blank password gets a
// generated temporary one, returned once in the response.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Name == "" {
		http.Error(w, "name and email are required", http.StatusBadRequest)
		return
	}

	tempPassword := ""
	if req.Password == "" {
		generated, err := utils.GenerateTempPassword()
		if err != nil {
			http.Error(w, "failed to generate password", http.StatusInternalServerError)
			return
		}
		req.Password = generated
		tempPassword = generated
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "failed to process password", http.StatusInternalServerError)
		return
	}

	u := User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		IsAdmin:  req.IsAdmin,
		Branch:   req.Branch,
	}
	if err := h.Repository.Save(h.DB, &u); err != nil {
		http.Error(w, "failed to save user", http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{"id": u.ID, "name": u.Name, "email": u.Email, "isAdmin": u.IsAdmin}
	if tempPassword != "" {
		resp["tempPassword"] = tempPassword
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}
