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
)

func wishlistRouter(userID string) *gin.Engine {
	r := authedRouter(userID)
	r.POST("/wishlists", CreateWishlist)
	r.PUT("/wishlists/:id", UpdateWishlist)
	r.DELETE("/wishlists/:id", DeleteWishlist)
	return r
}

func TestCreateWishlist(t *testing.T) {
	mock := newMockDB(t)
	userID := uuid.NewString()

	mock.ExpectExec("INSERT INTO wishlists").WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(t, wishlistRouter(userID), "POST", "/wishlists", gin.H{
		"title":            "Jane turns 30",
		"celebration_type": "birthday",
		"celebration_date": time.Now().Add(30 * 24 * time.Hour).Format(time.RFC3339),
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "draft", body["status"])
	assert.Len(t, body["share_code"], 10)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWishlistRejectsPastDate(t *testing.T) {
	newMockDB(t)
	w := performRequest(t, wishlistRouter(uuid.NewString()), "POST", "/wishlists", gin.H{
		"title":            "Too late",
		"celebration_type": "birthday",
		"celebration_date": time.Now().Add(-24 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateWishlistRejectsUnknownStatus(t *testing.T) {
	newMockDB(t)
	w := performRequest(t, wishlistRouter(uuid.NewString()), "PUT", "/wishlists/"+uuid.NewString(), gin.H{
		"status": "archived",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateWishlistActivates(t *testing.T) {
	mock := newMockDB(t)
	userID, wishlistID := uuid.NewString(), uuid.NewString()

	mock.ExpectExec("UPDATE wishlists").WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(t, wishlistRouter(userID), "PUT", "/wishlists/"+wishlistID, gin.H{
		"status": "active",
	})

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWishlistBlockedAfterContributions(t *testing.T) {
	mock := newMockDB(t)
	userID, wishlistID := uuid.NewString(), uuid.NewString()

	mock.ExpectQuery("SELECT amount_raised FROM wishlists").WithArgs(wishlistID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"amount_raised"}).AddRow(120.0))

	w := performRequest(t, wishlistRouter(userID), "DELETE", "/wishlists/"+wishlistID, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWishlistWithoutFunds(t *testing.T) {
	mock := newMockDB(t)
	userID, wishlistID := uuid.NewString(), uuid.NewString()

	mock.ExpectQuery("SELECT amount_raised FROM wishlists").WithArgs(wishlistID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"amount_raised"}).AddRow(0.0))
	mock.ExpectExec("DELETE FROM wishlists").WithArgs(wishlistID, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performRequest(t, wishlistRouter(userID), "DELETE", "/wishlists/"+wishlistID, nil)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPublicWishlistHidesNonActive(t *testing.T) {
	mock := newMockDB(t)
	r := gin.New()
	r.GET("/public/wishlists/:code", GetPublicWishlist)

	// Drafts and closed lists resolve to nothing on the public route
	mock.ExpectQuery("FROM wishlists WHERE share_code").WithArgs("draftcode1", "active").
		WillReturnError(errNoRows())

	w := performRequest(t, r, "GET", "/public/wishlists/draftcode1", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
