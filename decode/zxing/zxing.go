// Package zxing implements decode.Decoder on the gozxing engine
// (a Go port of ZXing), covering both QR and 1D product symbologies.
package zxing

import (
	"image"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/l3lasx/poc-barcodescanner/decode"
)

// Mode selects which reader families run per attempt.
type Mode int

const (
	// ModeAll tries QR first, then the 1D readers, on the same bitmap
	ModeAll Mode = iota
	// ModeQR tries only the QR reader
	ModeQR
	// ModeOneD tries only the 1D readers
	ModeOneD
)

// Reader is a pull-based decoder over gozxing.
//
// One Decode call makes one attempt per configured reader family against the
// same binarized frame, sequentially; the first hit wins. Not safe for
// concurrent Decode calls (the scan loop issues at most one attempt at a
// time, which is the intended usage).
type Reader struct {
	qr   gozxing.Reader
	oneD []gozxing.Reader
	mode Mode
}

// New creates a reader for the given mode.
func New(mode Mode) *Reader {
	return &Reader{
		qr: qrcode.NewQRCodeReader(),
		oneD: []gozxing.Reader{
			oned.NewMultiFormatUPCEANReader(nil),
			oned.NewCode128Reader(),
			oned.NewCode39Reader(),
		},
		mode: mode,
	}
}

// Decode attempts to locate and decode one symbol in the frame.
func (r *Reader) Decode(img image.Image) (decode.Result, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return decode.Result{}, err
	}

	var lastErr error
	for _, reader := range r.readers() {
		result, err := reader.Decode(bmp, nil)
		if err == nil {
			return decode.Result{
				Text:      result.GetText(),
				Format:    mapFormat(result.GetBarcodeFormat()),
				Timestamp: time.Now(),
			}, nil
		}
		lastErr = err
		if !isNotFound(err) {
			// Engine fault for this frame; stop trying readers.
			return decode.Result{}, err
		}
	}

	if lastErr == nil || isNotFound(lastErr) {
		return decode.Result{}, decode.ErrNoCode
	}
	return decode.Result{}, lastErr
}

func (r *Reader) readers() []gozxing.Reader {
	switch r.mode {
	case ModeQR:
		return []gozxing.Reader{r.qr}
	case ModeOneD:
		return r.oneD
	default:
		return append([]gozxing.Reader{r.qr}, r.oneD...)
	}
}

func isNotFound(err error) bool {
	_, ok := err.(gozxing.NotFoundException)
	return ok
}

// mapFormat maps gozxing formats onto the recognized symbology set;
// anything else is reported as unknown rather than rejected.
func mapFormat(f gozxing.BarcodeFormat) decode.Format {
	switch f {
	case gozxing.BarcodeFormat_EAN_13:
		return decode.FormatEAN13
	case gozxing.BarcodeFormat_EAN_8:
		return decode.FormatEAN8
	case gozxing.BarcodeFormat_UPC_A:
		return decode.FormatUPCA
	case gozxing.BarcodeFormat_UPC_E:
		return decode.FormatUPCE
	case gozxing.BarcodeFormat_CODE_128:
		return decode.FormatCode128
	case gozxing.BarcodeFormat_CODE_39:
		return decode.FormatCode39
	case gozxing.BarcodeFormat_QR_CODE:
		return decode.FormatQR
	default:
		return decode.FormatUnknown
	}
}
