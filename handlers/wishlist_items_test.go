package handlers

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemsRouter(userID string) *gin.Engine {
	r := authedRouter(userID)
	r.POST("/wishlists/:id/items", AddWishlistItem)
	r.DELETE("/wishlists/:id/items/:itemId", RemoveWishlistItem)
	r.PUT("/wishlists/:id/items/reorder", ReorderWishlistItems)
	return r
}

func expectOwnWishlist(mock sqlmock.Sqlmock, wishlistID, userID, status string) {
	mock.ExpectQuery("SELECT status FROM wishlists").WithArgs(wishlistID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(status))
}

func TestAddWishlistItemFreeForm(t *testing.T) {
	mock := newMockDB(t)
	userID, wishlistID := uuid.NewString(), uuid.NewString()

	expectOwnWishlist(mock, wishlistID, userID, "draft")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wishlist_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE wishlists").WithArgs(149.99, wishlistID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performRequest(t, itemsRouter(userID), "POST", "/wishlists/"+wishlistID+"/items", gin.H{
		"name":  "Noise-cancelling headphones",
		"price": 149.99,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decodeBody(t, w)["share_code"], 10)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddWishlistItemRequiresNameAndPrice(t *testing.T) {
	mock := newMockDB(t)
	userID, wishlistID := uuid.NewString(), uuid.NewString()

	expectOwnWishlist(mock, wishlistID, userID, "draft")

	w := performRequest(t, itemsRouter(userID), "POST", "/wishlists/"+wishlistID+"/items", gin.H{
		"name": "No price",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddWishlistItemFromCatalog(t *testing.T) {
	mock := newMockDB(t)
	userID, wishlistID, catalogID := uuid.NewString(), uuid.NewString(), uuid.NewString()

	expectOwnWishlist(mock, wishlistID, userID, "draft")
	mock.ExpectQuery("FROM curated_items").WithArgs(catalogID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price", "image_url"}).
			AddRow("Espresso machine", 220.0, "https://images.example.com/espresso.jpg"))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wishlist_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE wishlists").WithArgs(220.0, wishlistID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Name and price fall back to the catalog values
	w := performRequest(t, itemsRouter(userID), "POST", "/wishlists/"+wishlistID+"/items", gin.H{
		"curated_item_id": catalogID,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveWishlistItemBlockedAfterContributions(t *testing.T) {
	mock := newMockDB(t)
	userID, wishlistID, itemID := uuid.NewString(), uuid.NewString(), uuid.NewString()

	expectOwnWishlist(mock, wishlistID, userID, "active")
	mock.ExpectQuery("SELECT price, amount_contributed FROM wishlist_items").WithArgs(itemID, wishlistID).
		WillReturnRows(sqlmock.NewRows([]string{"price", "amount_contributed"}).AddRow(100.0, 35.0))

	w := performRequest(t, itemsRouter(userID), "DELETE", "/wishlists/"+wishlistID+"/items/"+itemID, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveWishlistItem(t *testing.T) {
	mock := newMockDB(t)
	userID, wishlistID, itemID := uuid.NewString(), uuid.NewString(), uuid.NewString()

	expectOwnWishlist(mock, wishlistID, userID, "draft")
	mock.ExpectQuery("SELECT price, amount_contributed FROM wishlist_items").WithArgs(itemID, wishlistID).
		WillReturnRows(sqlmock.NewRows([]string{"price", "amount_contributed"}).AddRow(100.0, 0.0))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM wishlist_items").WithArgs(itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE wishlists").WithArgs(100.0, wishlistID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performRequest(t, itemsRouter(userID), "DELETE", "/wishlists/"+wishlistID+"/items/"+itemID, nil)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReorderWishlistItems(t *testing.T) {
	mock := newMockDB(t)
	userID, wishlistID := uuid.NewString(), uuid.NewString()
	first, second := uuid.NewString(), uuid.NewString()

	expectOwnWishlist(mock, wishlistID, userID, "draft")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wishlist_items SET priority").WithArgs(0, first, wishlistID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE wishlist_items SET priority").WithArgs(1, second, wishlistID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performRequest(t, itemsRouter(userID), "PUT", "/wishlists/"+wishlistID+"/items/reorder", gin.H{
		"item_ids": []string{first, second},
	})

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReorderRejectsForeignItem(t *testing.T) {
	mock := newMockDB(t)
	userID, wishlistID := uuid.NewString(), uuid.NewString()
	foreign := uuid.NewString()

	expectOwnWishlist(mock, wishlistID, userID, "draft")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wishlist_items SET priority").WithArgs(0, foreign, wishlistID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	w := performRequest(t, itemsRouter(userID), "PUT", "/wishlists/"+wishlistID+"/items/reorder", gin.H{
		"item_ids": []string{foreign},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
