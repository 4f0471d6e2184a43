package devserver

import (
	"database/sql"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/tigerpop/internal/auth"
	"github.com/erazemk/tigerpop/internal/model"
	"github.com/erazemk/tigerpop/internal/store"
)

// DevTicketPrefix marks CAS service tickets the dev backend accepts without
// contacting a CAS server.
const DevTicketPrefix = "ST-"

// DevNetID is the netid every development ticket resolves to.
const DevNetID = "testuser"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
	Logger    *zap.Logger
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string     `json:"access_token"`
	User        model.User `json:"user"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		jsonError(w, http.StatusBadRequest, "Username already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username, req.Email, string(hash))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.Logger.Info("user signed up", zap.String("user", user.Username), zap.Int64("id", user.ID))
	jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "User created successfully!",
		"user_id": user.ID,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || user.PasswordHash == "" {
		jsonError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.Logger.Warn("login failed", zap.String("username", req.Username), zap.String("remote", r.RemoteAddr))
		jsonError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Username, user.NetID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	h.Logger.Info("user logged in", zap.String("user", user.Username))
	jsonResponse(w, http.StatusOK, loginResponse{AccessToken: token, User: user.User})
}

// Validate handles GET /api/auth/validate. Only development tickets are
// accepted; the dev backend never talks to a real CAS server.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		jsonError(w, http.StatusBadRequest, "ticket is required")
		return
	}
	if !strings.HasPrefix(ticket, DevTicketPrefix) {
		jsonError(w, http.StatusUnauthorized, "Invalid ticket")
		return
	}

	user, err := store.UpsertNetIDUser(r.Context(), h.DB, DevNetID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to create or fetch user")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Username, user.NetID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	h.Logger.Info("cas ticket accepted", zap.String("netid", user.NetID),
		zap.String("service", r.URL.Query().Get("service")))
	jsonResponse(w, http.StatusOK, map[string]any{
		"netid":        user.NetID,
		"user_id":      user.ID,
		"access_token": token,
	})
}

// Verify handles GET /api/auth/verify.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, err := store.GetUser(r.Context(), h.DB, userID(r))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "Invalid token user")
		return
	}

	netid := user.NetID
	if claims := GetClaims(r.Context()); claims.NetID != "" {
		netid = claims.NetID
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
		"netid":    netid,
	})
}
