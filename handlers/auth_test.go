package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func registerRouter() *gin.Engine {
	r := gin.New()
	r.POST("/register", RegisterUser)
	r.POST("/login", LoginUser)
	r.POST("/verify-otp", VerifyOTP)
	r.POST("/refresh", RefreshToken)
	return r
}

func TestRegisterUserSuccess(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO referral_codes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO otp_codes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performRequest(t, registerRouter(), "POST", "/register", gin.H{
		"email":      "Jane@Example.com",
		"password":   "supersecret",
		"first_name": "Jane",
		"last_name":  "Doe",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	w := performRequest(t, registerRouter(), "POST", "/register", gin.H{
		"email":      "jane@example.com",
		"password":   "supersecret",
		"first_name": "Jane",
		"last_name":  "Doe",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUserShortPassword(t *testing.T) {
	newMockDB(t)
	w := performRequest(t, registerRouter(), "POST", "/register", gin.H{
		"email":      "jane@example.com",
		"password":   "short",
		"first_name": "Jane",
		"last_name":  "Doe",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterUserInvalidReferralCode(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("SELECT user_id FROM referral_codes").WithArgs("NOSUCHCODE").
		WillReturnError(errNoRows())

	w := performRequest(t, registerRouter(), "POST", "/register", gin.H{
		"email":         "jane@example.com",
		"password":      "supersecret",
		"first_name":    "Jane",
		"last_name":     "Doe",
		"referral_code": "nosuchcode",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func loginRow(t *testing.T, password string, isActive bool) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name",
		"avatar", "role", "is_active", "is_verified", "created_at",
	}).AddRow(uuid.NewString(), "jane@example.com", string(hash), "Jane", "Doe",
		"https://api.dicebear.com/7.x/micah/svg?seed=1", "user", isActive, true, time.Now())
}

func TestLoginUserSuccess(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("FROM users WHERE email").WithArgs("jane@example.com").
		WillReturnRows(loginRow(t, "supersecret", true))

	w := performRequest(t, registerRouter(), "POST", "/login", gin.H{
		"email":    "jane@example.com",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["access_token"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUserWrongPassword(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("FROM users WHERE email").WithArgs("jane@example.com").
		WillReturnRows(loginRow(t, "supersecret", true))

	w := performRequest(t, registerRouter(), "POST", "/login", gin.H{
		"email":    "jane@example.com",
		"password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginUserDeactivated(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("FROM users WHERE email").WithArgs("jane@example.com").
		WillReturnRows(loginRow(t, "supersecret", false))

	w := performRequest(t, registerRouter(), "POST", "/login", gin.H{
		"email":    "jane@example.com",
		"password": "supersecret",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginUserUnknownEmail(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("FROM users WHERE email").WithArgs("nobody@example.com").
		WillReturnError(errNoRows())

	w := performRequest(t, registerRouter(), "POST", "/login", gin.H{
		"email":    "nobody@example.com",
		"password": "supersecret",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyOTPSuccess(t *testing.T) {
	mock := newMockDB(t)
	otpID, userID := uuid.NewString(), uuid.NewString()
	mock.ExpectQuery("FROM otp_codes o").WithArgs("jane@example.com", "123456", "verify").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at"}).
			AddRow(otpID, userID, time.Now().Add(5*time.Minute)))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE otp_codes SET used").WithArgs(otpID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET is_verified").WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performRequest(t, registerRouter(), "POST", "/verify-otp", gin.H{
		"email": "jane@example.com",
		"code":  "123456",
	})

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyOTPExpired(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("FROM otp_codes o").WithArgs("jane@example.com", "123456", "verify").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at"}).
			AddRow(uuid.NewString(), uuid.NewString(), time.Now().Add(-time.Minute)))

	w := performRequest(t, registerRouter(), "POST", "/verify-otp", gin.H{
		"email": "jane@example.com",
		"code":  "123456",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestVerifyOTPInvalidCode(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("FROM otp_codes o").WithArgs("jane@example.com", "999999", "verify").
		WillReturnError(errNoRows())

	w := performRequest(t, registerRouter(), "POST", "/verify-otp", gin.H{
		"email": "jane@example.com",
		"code":  "999999",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshTokenSuccess(t *testing.T) {
	mock := newMockDB(t)
	userID := uuid.NewString()
	refresh, err := generateToken(userID, "jane@example.com", "user", tokenTypeRefresh, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT is_active FROM users").WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(true))

	w := performRequest(t, registerRouter(), "POST", "/refresh", gin.H{"refresh_token": refresh})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["access_token"])
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	newMockDB(t)
	access, err := generateToken(uuid.NewString(), "jane@example.com", "user", tokenTypeAccess, time.Hour)
	require.NoError(t, err)

	w := performRequest(t, registerRouter(), "POST", "/refresh", gin.H{"refresh_token": access})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	newMockDB(t)
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})

	// No token
	w := performRequest(t, r, "GET", "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid access token
	userID := uuid.NewString()
	access, err := generateToken(userID, "jane@example.com", "user", tokenTypeAccess, time.Hour)
	require.NoError(t, err)

	req := performAuthedRequest(t, r, "GET", "/me", access)
	require.Equal(t, http.StatusOK, req.Code)
	assert.Equal(t, userID, decodeBody(t, req)["user_id"])

	// Refresh token must not pass as an access token
	refresh, err := generateToken(userID, "jane@example.com", "user", tokenTypeRefresh, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, performAuthedRequest(t, r, "GET", "/me", refresh).Code)
}

func TestAdminMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_role", "user") })
	r.GET("/admin", AdminMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(t, r, "GET", "/admin", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
