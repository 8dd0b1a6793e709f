package handlers

import (
	"database/sql"
	"net/http"

	"joygiver-server/models"

	"github.com/gin-gonic/gin"
)

// SendFriendRequest creates a pending friendship toward another user
func SendFriendRequest(c *gin.Context) {
	userID := c.GetString("user_id")
	friendID := c.Param("id")

	if friendID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot befriend yourself"})
		return
	}

	var exists bool
	err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND is_active = TRUE)`, friendID).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Either direction counts as an existing relationship
	err = db.QueryRow(`SELECT EXISTS(SELECT 1 FROM friendships
	                   WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1))`,
		userID, friendID).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Friendship already exists"})
		return
	}

	_, err = db.Exec(`INSERT INTO friendships (id, user_id, friend_id, status) VALUES ($1, $2, $3, $4)`,
		generateUUID(), userID, friendID, models.FriendshipPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send friend request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Friend request sent"})
}

// AcceptFriendRequest accepts an incoming pending request
func AcceptFriendRequest(c *gin.Context) {
	userID := c.GetString("user_id")
	requesterID := c.Param("id")

	result, err := db.Exec(`UPDATE friendships SET status = $1, updated_at = now()
	                        WHERE user_id = $2 AND friend_id = $3 AND status = $4`,
		models.FriendshipAccepted, requesterID, userID, models.FriendshipPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept friend request"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Friend request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}

// RemoveFriend deletes a friendship in either direction
func RemoveFriend(c *gin.Context) {
	userID := c.GetString("user_id")
	friendID := c.Param("id")

	result, err := db.Exec(`DELETE FROM friendships
	                        WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)`,
		userID, friendID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove friend"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Friendship not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}

// GetFriends lists accepted friendships with basic profile data
func GetFriends(c *gin.Context) {
	userID := c.GetString("user_id")

	rows, err := db.Query(`
		SELECT u.id, u.email, u.first_name, u.last_name, u.avatar, f.created_at
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		WHERE (f.user_id = $1 OR f.friend_id = $1) AND f.status = $2
		ORDER BY f.created_at DESC`, userID, models.FriendshipAccepted)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}
	defer rows.Close()

	friends := []gin.H{}
	for rows.Next() {
		var id, email, firstName, lastName string
		var avatar sql.NullString
		var since sql.NullTime
		if err := rows.Scan(&id, &email, &firstName, &lastName, &avatar, &since); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan friend"})
			return
		}
		friends = append(friends, gin.H{
			"id":         id,
			"email":      email,
			"first_name": firstName,
			"last_name":  lastName,
			"avatar":     avatar.String,
			"since":      since.Time,
		})
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// GetFriendRequests lists incoming pending requests
func GetFriendRequests(c *gin.Context) {
	userID := c.GetString("user_id")

	rows, err := db.Query(`
		SELECT u.id, u.email, u.first_name, u.last_name, u.avatar, f.created_at
		FROM friendships f
		JOIN users u ON u.id = f.user_id
		WHERE f.friend_id = $1 AND f.status = $2
		ORDER BY f.created_at DESC`, userID, models.FriendshipPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friend requests"})
		return
	}
	defer rows.Close()

	requests := []gin.H{}
	for rows.Next() {
		var id, email, firstName, lastName string
		var avatar sql.NullString
		var requestedAt sql.NullTime
		if err := rows.Scan(&id, &email, &firstName, &lastName, &avatar, &requestedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan friend request"})
			return
		}
		requests = append(requests, gin.H{
			"id":           id,
			"email":        email,
			"first_name":   firstName,
			"last_name":    lastName,
			"avatar":       avatar.String,
			"requested_at": requestedAt.Time,
		})
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
