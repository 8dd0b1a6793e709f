package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetReferralCode returns the caller's shareable code and usage stats
func GetReferralCode(c *gin.Context) {
	userID := c.GetString("user_id")

	var code string
	var useCount int
	err := db.QueryRow(`SELECT code, use_count FROM referral_codes WHERE user_id = $1`, userID).Scan(&code, &useCount)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Referral code not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":      code,
		"use_count": useCount,
	})
}

// GetReferrals lists the users who registered with the caller's code
func GetReferrals(c *gin.Context) {
	userID := c.GetString("user_id")

	rows, err := db.Query(`
		SELECT id, first_name, last_name, avatar, created_at
		FROM users
		WHERE referred_by = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch referrals"})
		return
	}
	defer rows.Close()

	referrals := []gin.H{}
	for rows.Next() {
		var id, firstName, lastName string
		var avatar sql.NullString
		var joinedAt sql.NullTime
		if err := rows.Scan(&id, &firstName, &lastName, &avatar, &joinedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan referral"})
			return
		}
		referrals = append(referrals, gin.H{
			"id":         id,
			"first_name": firstName,
			"last_name":  lastName,
			"avatar":     avatar.String,
			"joined_at":  joinedAt.Time,
		})
	}

	c.JSON(http.StatusOK, gin.H{"referrals": referrals})
}

// ValidateReferralCode is the public pre-registration check
func ValidateReferralCode(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Query("code")))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Referral code is required"})
		return
	}

	var firstName string
	err := db.QueryRow(`
		SELECT u.first_name
		FROM referral_codes rc
		JOIN users u ON u.id = rc.user_id
		WHERE rc.code = $1 AND u.is_active = TRUE`, code).Scan(&firstName)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"valid": false, "error": "Invalid referral code"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":         true,
		"referrer_name": firstName,
	})
}
