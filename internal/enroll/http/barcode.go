package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/totpenroll/pkg/mfasdk"
	"github.com/aussiebroadwan/totpenroll/pkg/slogx"
	"github.com/aussiebroadwan/totpenroll/pkg/totpx"
	qrcode "github.com/skip2/go-qrcode"
)

// BarcodePath is the built-in image endpoint QRImageURL points at by default.
const BarcodePath = "/report/barcode"

const (
	minBarcodeSize   = 64
	maxBarcodeSize   = 1024
	maxBarcodeLength = 2048
)

// BarcodeHandler renders ?type=QR&value=...&width=N&height=N as a PNG.
// The value usually embeds a TOTP secret, so responses are never cached.
type BarcodeHandler struct{}

// ServeHTTP godoc
//
//	@Summary		Render a QR code
//	@Description	Renders value as a square PNG QR code. Used as the image source for provisioning URIs.
//	@Tags			Barcode
//	@Produce		png
//	@Param			type	query		string			true	"Barcode type, only QR is supported"
//	@Param			value	query		string			true	"Content to encode, at most 2048 bytes"
//	@Param			width	query		int				false	"Image width, 64 to 1024"	default(300)
//	@Param			height	query		int				false	"Image height, must equal width"	default(300)
//	@Success		200		{file}		binary			"PNG image"
//	@Failure		400		{object}	mfasdk.APIError	"Invalid parameters"
//	@Router			/report/barcode [get].
func (h *BarcodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if !strings.EqualFold(q.Get("type"), "QR") {
		mfasdk.ErrInvalidRequest.WithDescription("type must be QR").WriteError(w)
		return
	}

	value := q.Get("value")
	if strings.TrimSpace(value) == "" || len(value) > maxBarcodeLength {
		mfasdk.ErrInvalidRequest.WithDescription("value is required and must be at most 2048 bytes").WriteError(w)
		return
	}

	width, err := barcodeDimension(q.Get("width"))
	if err != nil {
		mfasdk.ErrInvalidRequest.WithDescription("width " + err.Error()).WriteError(w)
		return
	}
	height, err := barcodeDimension(q.Get("height"))
	if err != nil {
		mfasdk.ErrInvalidRequest.WithDescription("height " + err.Error()).WriteError(w)
		return
	}
	if width != height {
		mfasdk.ErrInvalidRequest.WithDescription("QR codes are square: width and height must match").WriteError(w)
		return
	}

	png, err := qrcode.Encode(value, qrcode.Medium, width)
	if err != nil {
		slogx.FromContext(r.Context()).Warn("failed to encode QR code", "err", err)
		mfasdk.ErrInvalidRequest.WithDescription("value cannot be encoded as a QR code").WriteError(w)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

type dimensionError string

func (e dimensionError) Error() string { return string(e) }

func barcodeDimension(raw string) (int, error) {
	if raw == "" {
		return totpx.DefaultQRSize, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dimensionError("must be an integer")
	}
	if n < minBarcodeSize || n > maxBarcodeSize {
		return 0, dimensionError("must be between " + strconv.Itoa(minBarcodeSize) + " and " + strconv.Itoa(maxBarcodeSize))
	}
	return n, nil
}
