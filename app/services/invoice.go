package services

import (
	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/pkg/invoice"
)

// InvoiceFor copies an order snapshot into the printable invoice.
func InvoiceFor(o models.Order) invoice.Invoice {
	lines := make([]invoice.Line, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, invoice.Line{
			Name:     it.ProductName,
			Quantity: it.Quantity,
			Price:    it.UnitPrice,
			Subtotal: it.Subtotal,
		})
	}
	return invoice.Invoice{
		Number:        o.ID,
		Date:          o.CreatedAt,
		Status:        o.Status,
		CustomerName:  o.Name,
		Phone:         o.Phone,
		Email:         o.Email,
		HouseNumber:   o.HouseNumber,
		Address:       o.Address,
		Pincode:       o.Pincode,
		CustomDetails: o.CustomDetails,
		Lines:         lines,
		Total:         o.Total,
	}
}

// RenderInvoice returns the order's invoice as PDF bytes.
func RenderInvoice(o models.Order) ([]byte, error) {
	pdf, err := invoice.Render(InvoiceFor(o))
	if err != nil {
		return nil, persistence("render invoice", err)
	}
	return pdf, nil
}
