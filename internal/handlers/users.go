// internal/handlers/users.go
package handlers

import (
	"net/http"
	"time"

	"storyhub/internal/auth"
	"storyhub/internal/httputils"
	"storyhub/internal/models"
	"storyhub/internal/store"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type userInput struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture"`
	Bio            string `json:"bio"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := []models.User{}
	if err := h.store.Find(r.Context(), store.Users, nil, &users, store.WithoutFields("password")); err != nil {
		h.fail(w, r, "Error fetching users", err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/users/{id}
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	err := h.store.FindByID(r.Context(), store.Users, mux.Vars(r)["id"], &user, store.WithoutFields("password"))
	if isNotFound(err) {
		httputils.WriteMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Error fetching user", err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, user)
}

// CreateUser handles POST /api/users
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in userInput
	if !h.decode(w, r, &in) {
		return
	}
	if in.Username == "" || in.Email == "" || in.Password == "" {
		httputils.WriteMessage(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	role, ok := parseRole(in.Role, auth.RoleReader)
	if !ok {
		httputils.WriteMessage(w, http.StatusBadRequest, "Invalid role")
		return
	}

	var existing models.User
	err := h.store.FindOne(r.Context(), store.Users, store.Filter{"email": in.Email}, &existing, store.WithoutFields("password"))
	if err == nil {
		httputils.WriteMessage(w, http.StatusBadRequest, "User already exists")
		return
	}
	if !isNotFound(err) {
		h.fail(w, r, "Error creating user", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), h.bcryptCost)
	if err != nil {
		h.fail(w, r, "Error creating user", err)
		return
	}

	now := h.now()
	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       string(hash),
		Role:           role,
		ProfilePicture: in.ProfilePicture,
		Bio:            in.Bio,
		Favorites:      []primitive.ObjectID{},
		Following:      []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.store.Save(r.Context(), store.Users, user); err != nil {
		if isDuplicate(err) {
			httputils.WriteMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.fail(w, r, "Error creating user", err)
		return
	}

	h.log(r).Info("User created", "user_id", user.ID.Hex(), "role", user.Role)
	httputils.WriteJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT /api/users/{id}. A new password is re-hashed.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in userInput
	if !h.decode(w, r, &in) {
		return
	}

	// the full record is loaded so the stored hash survives the save
	var user models.User
	err := h.store.FindByID(r.Context(), store.Users, mux.Vars(r)["id"], &user)
	if isNotFound(err) {
		httputils.WriteMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Error updating user", err)
		return
	}

	role, ok := parseRole(in.Role, user.Role)
	if !ok {
		httputils.WriteMessage(w, http.StatusBadRequest, "Invalid role")
		return
	}

	user.Username = orKeep(in.Username, user.Username)
	user.Email = orKeep(in.Email, user.Email)
	user.Role = role
	user.ProfilePicture = orKeep(in.ProfilePicture, user.ProfilePicture)
	user.Bio = orKeep(in.Bio, user.Bio)
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), h.bcryptCost)
		if err != nil {
			h.fail(w, r, "Error updating user", err)
			return
		}
		user.Password = string(hash)
	}
	user.UpdatedAt = h.now()

	if err := h.store.Save(r.Context(), store.Users, &user); err != nil {
		if isDuplicate(err) {
			httputils.WriteMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.fail(w, r, "Error updating user", err)
		return
	}

	h.log(r).Info("User updated", "user_id", user.ID.Hex(), "role", user.Role)
	httputils.WriteJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/{id}
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteOne(r.Context(), store.Users, mux.Vars(r)["id"])
	if isNotFound(err) {
		httputils.WriteMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Error deleting user", err)
		return
	}

	h.log(r).Info("User deleted", "user_id", mux.Vars(r)["id"])
	deleted(w, "User")
}

// Login handles POST /api/users/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if !h.decode(w, r, &in) {
		return
	}

	var user models.User
	err := h.store.FindOne(r.Context(), store.Users, store.Filter{"email": in.Email}, &user)
	if err != nil && !isNotFound(err) {
		h.fail(w, r, "Error logging in", err)
		return
	}
	if err != nil || !passwordMatches(user.Password, in.Password) {
		h.log(r).Info("Login rejected")
		httputils.WriteMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, exp, err := h.issuer.Issue(user.ID.Hex())
	if err != nil {
		h.fail(w, r, "Error logging in", err)
		return
	}

	h.log(r).Info("User logged in", "user_id", user.ID.Hex())
	httputils.WriteJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, User: user})
}

func passwordMatches(hash, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func parseRole(s string, fallback auth.Role) (auth.Role, bool) {
	if s == "" {
		return fallback, true
	}
	role := auth.Role(s)
	return role, role.Valid()
}
