package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"society-booking-backend/internal/model"
	"society-booking-backend/internal/mw"
)

type registerRequest struct {
	Name       string `json:"name" binding:"required"`
	ResidentID string `json:"residentId" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	ResidentID string `json:"residentId" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type adminLoginRequest struct {
	AdminID  string `json:"adminId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, residentId and a password of at least 6 characters are required"})
		return
	}

	if _, err := h.store.GetUserByResidentID(c.Request.Context(), req.ResidentID); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resident id is already registered"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check resident id"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		ResidentID:   req.ResidentID,
		PasswordHash: string(hash),
		DuesStatus:   model.DuesPending,
	}
	if err := h.store.CreateUser(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	token, err := mw.IssueToken(h.cfg.Auth.JWTSecret, u.ID, mw.RoleResident, h.cfg.Auth.TokenTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": u})
}

// Login handles POST /api/auth/login for residents.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "residentId and password are required"})
		return
	}

	u, err := h.store.GetUserByResidentID(c.Request.Context(), req.ResidentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := mw.IssueToken(h.cfg.Auth.JWTSecret, u.ID, mw.RoleResident, h.cfg.Auth.TokenTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

// AdminLogin handles POST /api/auth/admin/login.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "adminId and password are required"})
		return
	}

	a, err := h.store.GetAdminByAdminID(c.Request.Context(), req.AdminID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := mw.IssueToken(h.cfg.Auth.JWTSecret, a.ID, mw.RoleAdmin, h.cfg.Auth.TokenTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
