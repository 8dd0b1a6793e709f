package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"joygiver-server/models"
	"joygiver-server/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// CreateAdminUser bootstraps the first admin account. Refuses to run
// once an admin exists.
func CreateAdminUser(c *gin.Context) {
	var req struct {
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required"`
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters"})
		return
	}

	var adminExists bool
	if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE role = 'admin')`).Scan(&adminExists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if adminExists {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin account already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	userID := generateUUID()
	_, err = db.Exec(`INSERT INTO users (id, email, password_hash, first_name, last_name, avatar, role, is_verified)
	                  VALUES ($1, $2, $3, $4, $5, $6, 'admin', TRUE)`,
		userID, strings.ToLower(req.Email), string(hashedPassword), req.FirstName, req.LastName,
		utils.GenerateRandomAvatar())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": userID, "message": "Admin account created"})
}

// GetAdminStats summarizes platform activity
func GetAdminStats(c *gin.Context) {
	stats := gin.H{}

	var totalUsers, totalWishlists, activeWishlists int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&totalUsers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM wishlists`).Scan(&totalWishlists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM wishlists WHERE status = 'active'`).Scan(&activeWishlists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var contributionCount int
	var contributionVolume float64
	if err := db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM contributions WHERE status = $1`,
		models.ContributionSucceeded).Scan(&contributionCount, &contributionVolume); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var walletBalance, walletPending float64
	if err := db.QueryRow(`SELECT COALESCE(SUM(balance), 0), COALESCE(SUM(pending), 0) FROM wallets`).
		Scan(&walletBalance, &walletPending); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats["total_users"] = totalUsers
	stats["total_wishlists"] = totalWishlists
	stats["active_wishlists"] = activeWishlists
	stats["contribution_count"] = contributionCount
	stats["contribution_volume"] = contributionVolume
	stats["wallet_liability"] = walletBalance + walletPending

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetAllUsers lists users for the admin dashboard
func GetAllUsers(c *gin.Context) {
	page, limit := paginationParams(c)
	offset := (page - 1) * limit

	rows, err := db.Query(`SELECT id, email, phone, first_name, last_name, avatar, role, is_active, is_verified, created_at, updated_at
	                       FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Phone, &user.FirstName, &user.LastName,
			&user.Avatar, &user.Role, &user.IsActive, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan user"})
			return
		}
		users = append(users, user)
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "page": page, "limit": limit})
}

// UpdateUserRole promotes or demotes a user
func UpdateUserRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.Role != "user" && req.Role != "admin" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	result, err := db.Exec(`UPDATE users SET role = $1, updated_at = now() WHERE id = $2`, req.Role, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// ToggleUserStatus flips a user's active flag
func ToggleUserStatus(c *gin.Context) {
	var isActive bool
	err := db.QueryRow(`UPDATE users SET is_active = NOT is_active, updated_at = now()
	                    WHERE id = $1 RETURNING is_active`, c.Param("id")).Scan(&isActive)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_active": isActive, "message": "Status updated"})
}
