package handlers

import (
	"database/sql"
	"net/http"

	"joygiver-server/config"
	"joygiver-server/models"
	"joygiver-server/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	stripe "github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// CreateContribution opens a pending contribution and a Stripe
// PaymentIntent for it. The money lands on the wishlist only when the
// webhook confirms the payment.
func CreateContribution(c *gin.Context) {
	var req struct {
		ItemShareCode     string  `json:"item_share_code"`
		WishlistShareCode string  `json:"wishlist_share_code"`
		Strategy          string  `json:"strategy"`
		ContributorName   string  `json:"contributor_name" binding:"required"`
		ContributorEmail  string  `json:"contributor_email"`
		Message           string  `json:"message"`
		Amount            float64 `json:"amount" binding:"required"`
		Anonymous         bool    `json:"anonymous"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Amount < config.AppConfig.MinContribution {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contribution is below the minimum amount"})
		return
	}
	if (req.ItemShareCode == "") == (req.WishlistShareCode == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide exactly one of item_share_code or wishlist_share_code"})
		return
	}

	var wishlistID string
	var itemID interface{}
	var strategy interface{}
	var currency string

	if req.ItemShareCode != "" {
		var id, status string
		err := db.QueryRow(`
			SELECT i.id, i.wishlist_id, w.status, w.currency
			FROM wishlist_items i
			JOIN wishlists w ON w.id = i.wishlist_id
			WHERE i.share_code = $1`, req.ItemShareCode).Scan(&id, &wishlistID, &status, &currency)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if status != models.WishlistActive {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Wishlist is not accepting contributions"})
			return
		}
		itemID = id
	} else {
		switch req.Strategy {
		case models.StrategyPriority, models.StrategyEqual, models.StrategyProportional:
		case "":
			req.Strategy = models.StrategyPriority
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid allocation strategy"})
			return
		}

		var status string
		err := db.QueryRow(`SELECT id, status, currency FROM wishlists WHERE share_code = $1`,
			req.WishlistShareCode).Scan(&wishlistID, &status, &currency)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if status != models.WishlistActive {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Wishlist is not accepting contributions"})
			return
		}
		strategy = req.Strategy
	}

	var contributorEmail, message interface{}
	if req.ContributorEmail != "" {
		contributorEmail = req.ContributorEmail
	}
	if req.Message != "" {
		message = req.Message
	}

	contributionID := generateUUID()
	_, err := db.Exec(`INSERT INTO contributions (id, wishlist_id, wishlist_item_id, contributor_name, contributor_email, message, amount, currency, strategy, anonymous)
	                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		contributionID, wishlistID, itemID, req.ContributorName, contributorEmail, message,
		req.Amount, currency, strategy, req.Anonymous)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contribution"})
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(services.ToCents(req.Amount)),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("contribution_id", contributionID)

	pi, err := paymentintent.New(params)
	if err != nil {
		// The row never got a payment reference, so it can never settle;
		// mark it failed right away
		if _, execErr := db.Exec(`UPDATE contributions SET status = $1, updated_at = now() WHERE id = $2`,
			models.ContributionFailed, contributionID); execErr != nil {
			logrus.WithError(execErr).WithField("contribution_id", contributionID).
				Error("Failed to mark contribution failed")
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
		return
	}

	if _, err := db.Exec(`UPDATE contributions SET payment_reference = $1, updated_at = now() WHERE id = $2`,
		pi.ID, contributionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment reference"})
		return
	}

	// Earmark the in-flight money on the targeted item until the webhook
	// settles or fails the payment
	if itemID != nil {
		if _, err := db.Exec(`UPDATE wishlist_items SET amount_pending = amount_pending + $1, updated_at = now()
		                      WHERE id = $2`, req.Amount, itemID); err != nil {
			logrus.WithError(err).WithField("contribution_id", contributionID).
				Warn("Failed to earmark pending funds")
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"contribution_id": contributionID,
		"client_secret":   pi.ClientSecret,
		"amount":          req.Amount,
		"currency":        currency,
	})
}

// GetWishlistContributions lists contributions on one of the caller's wishlists
func GetWishlistContributions(c *gin.Context) {
	userID := c.GetString("user_id")
	wishlistID := c.Param("id")

	if _, ok := ownWishlist(c, wishlistID, userID); !ok {
		return
	}

	rows, err := db.Query(`
		SELECT id, wishlist_id, wishlist_item_id, contributor_name, contributor_email, message,
		       amount, currency, strategy, status, payment_reference, anonymous, created_at, updated_at
		FROM contributions
		WHERE wishlist_id = $1
		ORDER BY created_at DESC`, wishlistID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contributions"})
		return
	}
	defer rows.Close()

	contributions := []models.Contribution{}
	for rows.Next() {
		var contrib models.Contribution
		if err := rows.Scan(
			&contrib.ID, &contrib.WishlistID, &contrib.WishlistItemID, &contrib.ContributorName,
			&contrib.ContributorEmail, &contrib.Message, &contrib.Amount, &contrib.Currency,
			&contrib.Strategy, &contrib.Status, &contrib.PaymentRef, &contrib.Anonymous,
			&contrib.CreatedAt, &contrib.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan contribution"})
			return
		}
		contributions = append(contributions, contrib)
	}

	c.JSON(http.StatusOK, gin.H{"contributions": contributions})
}

// GetPublicContributors is the public feed of settled gifts on a wishlist
func GetPublicContributors(c *gin.Context) {
	var wishlistID string
	err := db.QueryRow(`SELECT id FROM wishlists WHERE share_code = $1 AND status = $2`,
		c.Param("code"), models.WishlistActive).Scan(&wishlistID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	rows, err := db.Query(`
		SELECT contributor_name, message, amount, anonymous, created_at
		FROM contributions
		WHERE wishlist_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 50`, wishlistID, models.ContributionSucceeded)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contributors"})
		return
	}
	defer rows.Close()

	contributors := []gin.H{}
	for rows.Next() {
		var name string
		var message sql.NullString
		var amount float64
		var anonymous bool
		var createdAt sql.NullTime
		if err := rows.Scan(&name, &message, &amount, &anonymous, &createdAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan contributor"})
			return
		}
		if anonymous {
			name = "Anonymous"
		}
		contributors = append(contributors, gin.H{
			"name":       name,
			"message":    message.String,
			"amount":     amount,
			"created_at": createdAt.Time,
		})
	}

	c.JSON(http.StatusOK, gin.H{"contributors": contributors})
}
