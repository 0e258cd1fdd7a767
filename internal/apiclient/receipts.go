package apiclient

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"steeze/internal/domain"
)

// Upload is a payment-proof file on its way to the API.
type Upload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

func (c *Client) UploadReceipt(ctx context.Context, orderID domain.ID, f Upload) error {
	const op = "receipts.upload"
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("order_id", orderID.String()); err != nil {
		return &Error{Op: op, Message: msgNetwork, Err: err}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="receipt_file"; filename="`+escapeQuotes(f.Filename)+`"`)
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return &Error{Op: op, Message: msgNetwork, Err: err}
	}
	if _, err := io.Copy(part, f.Data); err != nil {
		return &Error{Op: op, Message: "Could not read the selected file.", Err: err}
	}
	if err := mw.Close(); err != nil {
		return &Error{Op: op, Message: msgNetwork, Err: err}
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint("receipts.php", nil), &buf)
	if err != nil {
		return &Error{Op: op, Message: msgNetwork, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	_, err = c.expectSuccess(ctx, op, req)
	return err
}

func (c *Client) ListReceipts(ctx context.Context) ([]domain.Receipt, error) {
	return getList[domain.Receipt](ctx, c, "receipts.list", "receipts.php", nil, "receipts")
}

// ReceiptForOrder returns the newest receipt attached to an order, if any.
func (c *Client) ReceiptForOrder(ctx context.Context, orderID domain.ID) (*domain.Receipt, error) {
	all, err := c.ListReceipts(ctx)
	if err != nil {
		return nil, err
	}
	var found *domain.Receipt
	for i := range all {
		if all[i].OrderID == orderID {
			found = &all[i]
		}
	}
	return found, nil
}

func (c *Client) UpdateReceiptStatus(ctx context.Context, id, orderID domain.ID, status domain.VerificationStatus) error {
	body := map[string]any{
		"id":                  id,
		"receipt_id":          id,
		"verification_status": status,
		"status":              status,
		"order_id":            orderID,
	}
	_, err := c.mutate(ctx, "receipts.update", http.MethodPut, "receipts.php", nil, body)
	return err
}

func (c *Client) DeleteReceipt(ctx context.Context, id domain.ID) error {
	_, err := c.mutate(ctx, "receipts.delete", http.MethodDelete, "receipts.php", url.Values{"id": {id.String()}}, nil)
	return err
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '"', '\\', '\r', '\n':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
