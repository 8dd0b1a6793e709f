package services

import (
	"github.com/sirupsen/logrus"
	stripe "github.com/stripe/stripe-go/v80"
)

// InitializeStripe configures the Stripe client key for the process
func InitializeStripe(secretKey string) {
	if secretKey == "" {
		logrus.Warn("Stripe secret key not set, payments disabled")
		return
	}
	stripe.Key = secretKey
}
