package handlers

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"steeze/internal/apiclient"
)

var (
	errBadUpload    = errors.New("please attach a JPG, PNG, WEBP or PDF receipt")
	errUploadTooBig = errors.New("that file is too large")
)

var receiptTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// receiptUpload reads the "receipt" form file. The caller must close the
// returned reader.
func receiptUpload(c *fiber.Ctx, maxBytes int) (apiclient.Upload, io.Closer, error) {
	fh, err := c.FormFile("receipt")
	if err != nil {
		return apiclient.Upload{}, nil, errBadUpload
	}
	if fh.Size <= 0 {
		return apiclient.Upload{}, nil, errBadUpload
	}
	if maxBytes > 0 && fh.Size > int64(maxBytes) {
		return apiclient.Upload{}, nil, errUploadTooBig
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	ctype, ok := receiptTypes[ext]
	if !ok {
		return apiclient.Upload{}, nil, errBadUpload
	}
	f, err := fh.Open()
	if err != nil {
		return apiclient.Upload{}, nil, errBadUpload
	}
	return apiclient.Upload{Filename: filepath.Base(fh.Filename), ContentType: ctype, Data: f}, f, nil
}
