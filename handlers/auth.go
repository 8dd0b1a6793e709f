package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"joygiver-server/models"
	"joygiver-server/services"
	"joygiver-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const otpTTL = 10 * time.Minute

// RegisterUser creates a new account with its wallet and referral code
func RegisterUser(c *gin.Context) {
	var req struct {
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required"`
		FirstName    string `json:"first_name" binding:"required"`
		LastName     string `json:"last_name" binding:"required"`
		Phone        string `json:"phone"`
		ReferralCode string `json:"referral_code"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Check if user already exists
	var exists bool
	err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, req.Email).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}

	// Resolve referrer before opening the transaction
	var referrerID *string
	if req.ReferralCode != "" {
		var id string
		err := db.QueryRow(`SELECT user_id FROM referral_codes WHERE code = $1`,
			strings.ToUpper(req.ReferralCode)).Scan(&id)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid referral code"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		referrerID = &id
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer tx.Rollback()

	userID := generateUUID()
	avatar := utils.GenerateRandomAvatar()

	var phone interface{}
	if req.Phone != "" {
		phone = req.Phone
	}

	_, err = tx.Exec(`INSERT INTO users (id, email, phone, password_hash, first_name, last_name, avatar, referred_by, created_at, updated_at)
	                  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`,
		userID, req.Email, phone, string(hashedPassword), req.FirstName, req.LastName, avatar, referrerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	// Every user gets a wallet and a shareable referral code
	_, err = tx.Exec(`INSERT INTO wallets (id, user_id) VALUES ($1, $2)`, generateUUID(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create wallet"})
		return
	}

	_, err = tx.Exec(`INSERT INTO referral_codes (id, user_id, code) VALUES ($1, $2, $3)`,
		generateUUID(), userID, utils.GenerateReferralCode(8))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create referral code"})
		return
	}

	if referrerID != nil {
		_, err = tx.Exec(`UPDATE referral_codes SET use_count = use_count + 1 WHERE user_id = $1`, *referrerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record referral"})
			return
		}
	}

	// Verification OTP
	otp := utils.GenerateOTPCode(6)
	_, err = tx.Exec(`INSERT INTO otp_codes (id, user_id, code, purpose, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		generateUUID(), userID, otp, models.OTPPurposeVerify, time.Now().Add(otpTTL))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create verification code"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	services.Notifications.SendOTP(req.Email, otp, models.OTPPurposeVerify)

	accessToken, refreshToken, err := generateTokenPair(userID, req.Email, "user")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":         userID,
			"email":      req.Email,
			"first_name": req.FirstName,
			"last_name":  req.LastName,
			"avatar":     avatar,
		},
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"message":       "Registration successful",
	})
}

// LoginUser authenticates with email and password
func LoginUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := db.QueryRow(`SELECT id, email, password_hash, first_name, last_name, avatar, role, is_active, is_verified, created_at
	                    FROM users WHERE email = $1`, req.Email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Avatar, &user.Role, &user.IsActive, &user.IsVerified, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
		return
	}

	if user.PasswordHash == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	accessToken, refreshToken, err := generateTokenPair(user.ID.String(), user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"message":       "Login successful",
	})
}

// SendOTP issues a fresh one-time code for account verification
func SendOTP(c *gin.Context) {
	var req struct {
		Email   string `json:"email" binding:"required,email"`
		Purpose string `json:"purpose"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	purpose := req.Purpose
	if purpose == "" {
		purpose = models.OTPPurposeVerify
	}
	if purpose != models.OTPPurposeVerify && purpose != models.OTPPurposeReset {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP purpose"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var userID string
	err := db.QueryRow(`SELECT id FROM users WHERE email = $1`, req.Email).Scan(&userID)
	if err == sql.ErrNoRows {
		// Do not reveal whether the address is registered
		c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a code has been sent"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	otp := utils.GenerateOTPCode(6)
	_, err = db.Exec(`INSERT INTO otp_codes (id, user_id, code, purpose, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		generateUUID(), userID, otp, purpose, time.Now().Add(otpTTL))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create code"})
		return
	}

	services.Notifications.SendOTP(req.Email, otp, purpose)

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a code has been sent"})
}

// VerifyOTP consumes a verification code and marks the account verified
func VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	otpID, userID, status := consumeOTP(req.Email, req.Code, models.OTPPurposeVerify)
	if status != http.StatusOK {
		respondOTPFailure(c, status)
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE otp_codes SET used = TRUE WHERE id = $1`, otpID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify code"})
		return
	}
	if _, err := tx.Exec(`UPDATE users SET is_verified = TRUE, updated_at = now() WHERE id = $1`, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify account"})
		return
	}
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account verified successfully"})
}

// ForgotPassword starts the password reset flow
func ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var userID string
	err := db.QueryRow(`SELECT id FROM users WHERE email = $1`, req.Email).Scan(&userID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset code has been sent"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	otp := utils.GenerateOTPCode(6)
	_, err = db.Exec(`INSERT INTO otp_codes (id, user_id, code, purpose, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		generateUUID(), userID, otp, models.OTPPurposeReset, time.Now().Add(otpTTL))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reset code"})
		return
	}

	services.Notifications.SendOTP(req.Email, otp, models.OTPPurposeReset)

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset code has been sent"})
}

// ResetPassword completes the reset flow with a valid reset code
func ResetPassword(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Code     string `json:"code" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	otpID, userID, status := consumeOTP(req.Email, req.Code, models.OTPPurposeReset)
	if status != http.StatusOK {
		respondOTPFailure(c, status)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE otp_codes SET used = TRUE WHERE id = $1`, otpID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	if _, err := tx.Exec(`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`,
		string(hashedPassword), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	logrus.WithField("user_id", userID).Info("Password reset completed")

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// consumeOTP looks up the latest matching unused code. Returns the OTP
// row id, the owning user id, and an HTTP status describing the outcome.
func consumeOTP(email, code, purpose string) (otpID, userID string, status int) {
	var expiresAt time.Time
	err := db.QueryRow(`
		SELECT o.id, o.user_id, o.expires_at
		FROM otp_codes o
		JOIN users u ON u.id = o.user_id
		WHERE u.email = $1 AND o.code = $2 AND o.purpose = $3 AND o.used = FALSE
		ORDER BY o.created_at DESC
		LIMIT 1`, email, code, purpose).Scan(&otpID, &userID, &expiresAt)
	if err == sql.ErrNoRows {
		return "", "", http.StatusUnauthorized
	}
	if err != nil {
		return "", "", http.StatusInternalServerError
	}
	if time.Now().After(expiresAt) {
		return "", "", http.StatusForbidden
	}
	return otpID, userID, http.StatusOK
}

func respondOTPFailure(c *gin.Context, status int) {
	switch status {
	case http.StatusUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid code"})
	case http.StatusForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": "Code has expired"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}

// RefreshToken exchanges a valid refresh token for a new token pair
func RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	claims, err := parseToken(req.RefreshToken)
	if err != nil || claims.Type != tokenTypeRefresh {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	// The account must still be active
	var isActive bool
	err = db.QueryRow(`SELECT is_active FROM users WHERE id = $1`, claims.UserID).Scan(&isActive)
	if err == sql.ErrNoRows || (err == nil && !isActive) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is not available"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	accessToken, refreshToken, err := generateTokenPair(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// ValidateToken reports whether the presented access token is valid
func ValidateToken(c *gin.Context) {
	claims, ok := bearerClaims(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":   true,
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    claims.Role,
	})
}

// LogoutUser is client-side token removal
func LogoutUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func bearerClaims(c *gin.Context) (*Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return nil, false
	}
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
		return nil, false
	}

	claims, err := parseToken(authHeader[7:])
	if err != nil || claims.Type != tokenTypeAccess {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return nil, false
	}
	return claims, true
}

// AuthMiddleware validates JWT access tokens
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// AdminMiddleware requires an admin role on top of AuthMiddleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
