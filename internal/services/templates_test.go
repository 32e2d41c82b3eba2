package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestRenderTemplate(t *testing.T) {
	order := notifiableOrder()
	order.Status = domain.StatusShipped

	kinds := []domain.NotificationKind{
		domain.KindAdminNewOrder,
		domain.KindCustomerConfirmation,
		domain.KindShipped,
		domain.KindDelivered,
		domain.KindStatusUpdate,
	}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			msg, err := renderTemplate(kind, order)
			require.NoError(t, err)

			assert.NotEmpty(t, msg.Subject)
			assert.Contains(t, msg.Subject, order.ID)
			assert.NotEmpty(t, msg.HTML)
			assert.NotEmpty(t, msg.Text)

			// Same inputs, same output.
			again, err := renderTemplate(kind, order)
			require.NoError(t, err)
			assert.Equal(t, msg, again)
		})
	}
}

func TestRenderTemplate_ShippedCarriesTracking(t *testing.T) {
	order := notifiableOrder()

	msg, err := renderTemplate(domain.KindShipped, order)
	require.NoError(t, err)

	assert.Contains(t, msg.HTML, order.TrackingNumber)
	assert.Contains(t, msg.Text, order.TrackingNumber)
}

func TestRenderTemplate_AmountsInMajorUnits(t *testing.T) {
	order := notifiableOrder()

	msg, err := renderTemplate(domain.KindCustomerConfirmation, order)
	require.NoError(t, err)

	// 36000 minor units render as 360.00.
	assert.Contains(t, msg.Text, "360.00")
	assert.False(t, strings.Contains(msg.Text, "36000"))
}

func TestRenderTemplate_UnknownKind(t *testing.T) {
	_, err := renderTemplate(domain.NotificationKind("smoke_signal"), notifiableOrder())
	assert.Error(t, err)
}

func TestRenderInquiry(t *testing.T) {
	msg := renderInquiry("B", "b@y.com", "Sizing", "Does the tee run small?")

	assert.Contains(t, msg.Subject, "Sizing")
	assert.Contains(t, msg.Text, "b@y.com")
	assert.Contains(t, msg.Text, "Does the tee run small?")

	noSubject := renderInquiry("B", "b@y.com", "", "hello")
	assert.Contains(t, noSubject.Subject, "New inquiry")
}
