package handlers

import (
	"database/sql"
	"net/http"

	"joygiver-server/models"
	"joygiver-server/services"

	"github.com/gin-gonic/gin"
)

// GetUserProfile returns the authenticated user's profile
func GetUserProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	err := db.QueryRow(`SELECT id, email, phone, first_name, last_name, avatar, role, is_active, is_verified, created_at, updated_at
	                    FROM users WHERE id = $1`, userID).Scan(
		&user.ID, &user.Email, &user.Phone, &user.FirstName, &user.LastName,
		&user.Avatar, &user.Role, &user.IsActive, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUserProfile updates names and phone of the authenticated user
func UpdateUserProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := db.Exec(`UPDATE users
	                        SET first_name = COALESCE(NULLIF($1, ''), first_name),
	                            last_name  = COALESCE(NULLIF($2, ''), last_name),
	                            phone      = COALESCE(NULLIF($3, ''), phone),
	                            updated_at = now()
	                        WHERE id = $4`,
		req.FirstName, req.LastName, req.Phone, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// UpdatePushToken stores or clears the user's push token
func UpdatePushToken(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		PushToken string `json:"push_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	// Empty token disables notifications
	var pushTokenValue interface{}
	if req.PushToken != "" {
		pushTokenValue = req.PushToken
	}

	_, err := db.Exec(`UPDATE users SET push_token = $1, updated_at = now() WHERE id = $2`, pushTokenValue, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update push token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push token updated successfully"})
}

// UploadAvatar replaces the user's avatar with an uploaded image
func UploadAvatar(c *gin.Context) {
	userID := c.GetString("user_id")

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	defer file.Close()

	if services.Cloudinary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
		return
	}

	result, err := services.Cloudinary.UploadImage(file, "avatars")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	_, err = db.Exec(`UPDATE users SET avatar = $1, updated_at = now() WHERE id = $2`, result.SecureURL, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save avatar"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar": result.SecureURL})
}
