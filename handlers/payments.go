package handlers

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"

	"joygiver-server/config"
	"joygiver-server/models"
	"joygiver-server/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	stripe "github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
)

// HandleStripeWebhook ingests payment events and settles contributions
func HandleStripeWebhook(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Writer.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := webhook.ConstructEvent(payload, c.Request.Header.Get("Stripe-Signature"),
		config.AppConfig.StripeWebhookSecret)
	if err != nil {
		logrus.WithError(err).Warn("Webhook signature verification failed")
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			logrus.WithError(err).Error("Failed to parse webhook payload")
			c.Writer.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := settleContribution(pi.ID); err != nil {
			logrus.WithError(err).WithField("payment_intent", pi.ID).Error("Failed to settle contribution")
			c.Writer.WriteHeader(http.StatusInternalServerError)
			return
		}
	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			c.Writer.WriteHeader(http.StatusBadRequest)
			return
		}
		markContributionFailed(pi.ID)
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// settleContribution applies a confirmed payment to the wishlist:
// allocations are computed, item balances and wishlist aggregates are
// bumped, and the contribution is marked succeeded, all in one
// transaction. Webhook replays are no-ops thanks to the pending-status
// guard.
func settleContribution(paymentRef string) error {
	var contrib models.Contribution
	err := db.QueryRow(`
		SELECT id, wishlist_id, wishlist_item_id, amount, strategy, status
		FROM contributions WHERE payment_reference = $1`, paymentRef).Scan(
		&contrib.ID, &contrib.WishlistID, &contrib.WishlistItemID,
		&contrib.Amount, &contrib.Strategy, &contrib.Status)
	if err == sql.ErrNoRows {
		// Not ours; acknowledge so Stripe stops retrying
		logrus.WithField("payment_intent", paymentRef).Warn("Webhook for unknown contribution")
		return nil
	}
	if err != nil {
		return err
	}
	if contrib.Status != models.ContributionPending {
		return nil
	}

	var allocations []services.ItemAllocation
	if contrib.WishlistItemID != nil {
		allocations = []services.ItemAllocation{{
			WishlistItemID: *contrib.WishlistItemID,
			Amount:         contrib.Amount,
		}}
	} else {
		items, err := fundableItems(contrib.WishlistID.String())
		if err != nil {
			return err
		}
		strategy := models.StrategyPriority
		if contrib.Strategy != nil {
			strategy = *contrib.Strategy
		}
		if len(items) == 0 {
			// Everything already funded: the surplus still belongs to
			// the celebrant, parked on the top-priority item
			items, err = allItems(contrib.WishlistID.String())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				// A wishlist with no items; count the money on the list itself
				return settleWithAllocations(&contrib, nil)
			}
			strategy = models.StrategyPriority
		}
		allocations, err = services.AllocateContribution(strategy, contrib.Amount, items)
		if err != nil {
			return err
		}
	}

	return settleWithAllocations(&contrib, allocations)
}

func settleWithAllocations(contrib *models.Contribution, allocations []services.ItemAllocation) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Release the pending earmark placed when the intent was created
	if contrib.WishlistItemID != nil {
		if _, err := tx.Exec(`UPDATE wishlist_items
		                      SET amount_pending = GREATEST(amount_pending - $1, 0)
		                      WHERE id = $2`, contrib.Amount, *contrib.WishlistItemID); err != nil {
			return err
		}
	}

	for _, alloc := range allocations {
		_, err = tx.Exec(`INSERT INTO contribution_allocations (id, contribution_id, wishlist_item_id, amount)
		                  VALUES ($1, $2, $3, $4)`,
			generateUUID(), contrib.ID, alloc.WishlistItemID, alloc.Amount)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`UPDATE wishlist_items
		                  SET amount_contributed = amount_contributed + $1,
		                      amount_available   = amount_available + $1,
		                      is_fully_funded    = (amount_contributed + $1) >= price,
		                      updated_at         = now()
		                  WHERE id = $2`, alloc.Amount, alloc.WishlistItemID)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(`UPDATE wishlists SET amount_raised = amount_raised + $1, updated_at = now() WHERE id = $2`,
		contrib.Amount, contrib.WishlistID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`UPDATE contributions SET status = $1, updated_at = now() WHERE id = $2`,
		models.ContributionSucceeded, contrib.ID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	notifyWishlistOwner(contrib)
	return nil
}

// markContributionFailed flips a pending contribution to failed and
// releases any per-item pending earmark. Best-effort: failures are
// logged, the provider already got its acknowledgement.
func markContributionFailed(paymentRef string) {
	var itemID sql.NullString
	var amount float64
	err := db.QueryRow(`UPDATE contributions SET status = $1, updated_at = now()
	                    WHERE payment_reference = $2 AND status = $3
	                    RETURNING wishlist_item_id, amount`,
		models.ContributionFailed, paymentRef, models.ContributionPending).Scan(&itemID, &amount)
	if err == sql.ErrNoRows {
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("payment_intent", paymentRef).
			Error("Failed to mark contribution failed")
		return
	}

	if itemID.Valid {
		if _, err := db.Exec(`UPDATE wishlist_items
		                      SET amount_pending = GREATEST(amount_pending - $1, 0), updated_at = now()
		                      WHERE id = $2`, amount, itemID.String); err != nil {
			logrus.WithError(err).WithField("payment_intent", paymentRef).
				Error("Failed to release pending funds")
		}
	}
}

// fundableItems loads the items a bulk contribution may be split across
func fundableItems(wishlistID string) ([]models.WishlistItem, error) {
	rows, err := db.Query(`
		SELECT id, price, priority, amount_contributed, created_at
		FROM wishlist_items
		WHERE wishlist_id = $1 AND is_fully_funded = FALSE
		ORDER BY priority, created_at`, wishlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAllocationItems(rows)
}

func allItems(wishlistID string) ([]models.WishlistItem, error) {
	rows, err := db.Query(`
		SELECT id, price, priority, amount_contributed, created_at
		FROM wishlist_items
		WHERE wishlist_id = $1
		ORDER BY priority, created_at`, wishlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAllocationItems(rows)
}

func scanAllocationItems(rows *sql.Rows) ([]models.WishlistItem, error) {
	items := []models.WishlistItem{}
	for rows.Next() {
		var item models.WishlistItem
		if err := rows.Scan(&item.ID, &item.Price, &item.Priority, &item.AmountContributed, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// notifyWishlistOwner pushes a best-effort gift notification
func notifyWishlistOwner(contrib *models.Contribution) {
	var pushToken sql.NullString
	err := db.QueryRow(`
		SELECT u.push_token FROM users u
		JOIN wishlists w ON w.user_id = u.id
		WHERE w.id = $1`, contrib.WishlistID).Scan(&pushToken)
	if err != nil || !pushToken.Valid || pushToken.String == "" {
		return
	}

	if err := services.Notifications.SendPushNotification(pushToken.String,
		"You received a gift!",
		"A contribution just arrived on your wishlist.",
		map[string]interface{}{"wishlist_id": contrib.WishlistID.String()},
	); err != nil {
		logrus.WithError(err).Debug("Push notification failed")
	}
}
