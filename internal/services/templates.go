package services

import (
	"fmt"
	"strings"

	"storefront/internal/domain"
)

type renderedMessage struct {
	Subject string
	HTML    string
	Text    string
}

// renderTemplate is pure: same order and kind always produce the same
// message.
func renderTemplate(kind domain.NotificationKind, order *domain.Order) (renderedMessage, error) {
	switch kind {
	case domain.KindAdminNewOrder:
		return renderedMessage{
			Subject: fmt.Sprintf("New order %s from %s", order.ID, order.Customer.Name),
			HTML: fmt.Sprintf("<h2>New order %s</h2><p>%s (%s) placed an order for %s.</p>%s",
				order.ID, order.Customer.Name, order.Customer.Email, formatAmount(order.Total), itemTableHTML(order)),
			Text: fmt.Sprintf("New order %s: %s (%s), total %s.\n%s",
				order.ID, order.Customer.Name, order.Customer.Email, formatAmount(order.Total), itemListText(order)),
		}, nil
	case domain.KindCustomerConfirmation:
		return renderedMessage{
			Subject: fmt.Sprintf("Order %s confirmed", order.ID),
			HTML: fmt.Sprintf("<h2>Thanks for your order, %s!</h2><p>Your order <strong>%s</strong> has been received. Total: %s.</p>%s<p>Tracking number: %s</p>",
				order.Customer.Name, order.ID, formatAmount(order.Total), itemTableHTML(order), order.TrackingNumber),
			Text: fmt.Sprintf("Thanks for your order, %s! Order %s received, total %s. Tracking number: %s.\n%s",
				order.Customer.Name, order.ID, formatAmount(order.Total), order.TrackingNumber, itemListText(order)),
		}, nil
	case domain.KindShipped:
		return renderedMessage{
			Subject: fmt.Sprintf("Order %s has shipped", order.ID),
			HTML: fmt.Sprintf("<h2>Good news, %s!</h2><p>Your order <strong>%s</strong> is on its way. Track it with number <strong>%s</strong>.</p>",
				order.Customer.Name, order.ID, order.TrackingNumber),
			Text: fmt.Sprintf("Good news, %s! Order %s is on its way. Tracking number: %s.",
				order.Customer.Name, order.ID, order.TrackingNumber),
		}, nil
	case domain.KindDelivered:
		return renderedMessage{
			Subject: fmt.Sprintf("Order %s delivered", order.ID),
			HTML: fmt.Sprintf("<h2>Your order has arrived, %s!</h2><p>Order <strong>%s</strong> was delivered. We hope you love it.</p>",
				order.Customer.Name, order.ID),
			Text: fmt.Sprintf("Your order has arrived, %s! Order %s was delivered.",
				order.Customer.Name, order.ID),
		}, nil
	case domain.KindStatusUpdate:
		return renderedMessage{
			Subject: fmt.Sprintf("Order %s update: %s", order.ID, order.Status),
			HTML: fmt.Sprintf("<h2>Order update</h2><p>Hi %s, your order <strong>%s</strong> is now <strong>%s</strong>.</p>",
				order.Customer.Name, order.ID, order.Status),
			Text: fmt.Sprintf("Hi %s, your order %s is now %s.",
				order.Customer.Name, order.ID, order.Status),
		}, nil
	default:
		return renderedMessage{}, fmt.Errorf("unknown notification kind %q", kind)
	}
}

func renderInquiry(name, fromEmail, subject, message string) renderedMessage {
	if subject == "" {
		subject = "New inquiry"
	}
	return renderedMessage{
		Subject: fmt.Sprintf("Inquiry: %s", subject),
		HTML: fmt.Sprintf("<h2>New inquiry from %s</h2><p>Reply to: %s</p><p>%s</p>",
			name, fromEmail, message),
		Text: fmt.Sprintf("New inquiry from %s (%s):\n%s", name, fromEmail, message),
	}
}

func formatAmount(minor int64) string {
	return fmt.Sprintf("%.2f", float64(minor)/100)
}

func itemTableHTML(order *domain.Order) string {
	var b strings.Builder
	b.WriteString("<table><tr><th>Item</th><th>Qty</th><th>Price</th></tr>")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>", item.Name, item.Quantity, formatAmount(item.UnitPrice))
	}
	b.WriteString("</table>")
	return b.String()
}

func itemListText(order *domain.Order) string {
	var b strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s x%d @ %s\n", item.Name, item.Quantity, formatAmount(item.UnitPrice))
	}
	return b.String()
}
