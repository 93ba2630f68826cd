package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// InvoiceService renders a PDF invoice for an order the actor may view.
type InvoiceService struct {
	Orders  *OrderService
	BaseURL string
}

func NewInvoiceService(orders *OrderService, baseURL string) *InvoiceService {
	return &InvoiceService{Orders: orders, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *InvoiceService) Render(ctx context.Context, actor *domain.User, orderID string) (_ []byte, err error) {
	ctx, span := tracer.Start(ctx, "order.invoice")
	defer func() { endSpan(span, err) }()

	o, err := s.Orders.Get(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	qrPNG, err := qrcode.Encode(s.BaseURL+"/order/"+o.ID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("invoice qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Invoice")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, "Order: "+o.ID)
	pdf.Ln(6)
	pdf.Cell(0, 7, "Placed: "+o.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	pdf.Ln(6)
	pdf.Cell(0, 7, "Status: "+string(o.Status))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "Ship to")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, tr(o.FullName))
	pdf.Ln(6)
	pdf.MultiCell(120, 6, tr(o.Address), "", "L", false)
	if o.Phone != "" {
		pdf.Cell(0, 7, tr(o.Phone))
		pdf.Ln(6)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, opts, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(95, 8, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, it := range o.Items {
		pdf.CellFormat(95, 7, tr(it.ProductName), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprint(it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, it.Price.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, it.LineTotal().StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(150, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, o.Total.StringFixed(2), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
