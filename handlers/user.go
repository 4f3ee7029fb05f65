package handlers

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/andrewpaige1/lingocards-api/auth"
	"github.com/andrewpaige1/lingocards-api/errs"
	"github.com/andrewpaige1/lingocards-api/models"
	"github.com/andrewpaige1/lingocards-api/utils"
)

const minPasswordLen = 8

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// POST /api/auth/register
func (db *DBHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	fields := make(map[string]string)
	if _, err := mail.ParseAddress(email); err != nil || len(email) > 255 {
		fields["email"] = "A valid email is required"
	}
	if name == "" || utf8.RuneCountInString(name) > 100 {
		fields["name"] = "Name is required and must be at most 100 characters"
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		fields["password"] = "Password must be at least 8 characters"
	}
	if len(fields) > 0 {
		utils.WriteError(w, r, errs.Validation("invalid registration", fields))
		return
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		utils.WriteError(w, r, errors.Wrap(err, "check email"))
		return
	}
	if count > 0 {
		utils.WriteError(w, r, errs.Validation("invalid registration", map[string]string{
			"email": "Email is already registered",
		}))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	user := models.User{Email: email, Name: name, PasswordHash: hash}
	if err := db.Create(&user).Error; err != nil {
		utils.WriteError(w, r, errors.Wrap(err, "create user"))
		return
	}

	db.Log.Info("Register: created user", slog.String("user_id", user.ID))
	db.writeToken(w, r, &user, http.StatusCreated)
}

// POST /api/auth/login
func (db *DBHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var user models.User
	err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, r, errors.Wrap(err, "load user"))
		return
	}
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		utils.WriteError(w, r, errs.Unauthorized("invalid email or password"))
		return
	}

	db.writeToken(w, r, &user, http.StatusOK)
}

// GET /api/me
func (db *DBHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (db *DBHandler) writeToken(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, err := auth.CreateToken(db.Env, user.ID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	http.SetCookie(w, auth.TokenCookie(db.Env, token))
	utils.WriteJSON(w, status, authResponse{User: user, Token: token})
}
