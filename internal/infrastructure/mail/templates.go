package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

var orderConfirmation = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html>
<body>
<h2>Thank you for your order, {{.Order.ClientName}}!</h2>
<p>Order <strong>{{.Order.ID}}</strong> is {{.Order.Status}}.</p>
<table>
<tr><td>Product</td><td>{{.ProductName}}</td></tr>
{{if .Product}}<tr><td>Price</td><td>{{printf "%.2f" .Product.Price}}</td></tr>{{end}}
<tr><td>Deliver to</td><td>{{.Order.Address}}</td></tr>
<tr><td>Phone</td><td>{{.Order.PhoneNumber}}</td></tr>
</table>
</body>
</html>
`))

// OrderConfirmation renders the email sent to a client after an order is
// placed. product may be nil.
func OrderConfirmation(order *domain.Order, product *domain.Product) (Message, error) {
	data := struct {
		Order       *domain.Order
		Product     *domain.Product
		ProductName string
	}{Order: order, Product: product, ProductName: order.ProductID}
	if product != nil {
		data.ProductName = product.Name
	}

	var buf bytes.Buffer
	if err := orderConfirmation.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("mail: render order confirmation: %w", err)
	}
	return Message{
		To:      []string{order.Email},
		Subject: "Your order " + order.ID + " has been received",
		HTML:    buf.String(),
	}, nil
}
