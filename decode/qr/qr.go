// Package qr implements decode.Decoder on the goqr engine. QR only - it
// exists to prove the decoder seam with a second, independent engine.
package qr

import (
	"image"
	"time"

	"github.com/liyue201/goqr"

	"github.com/l3lasx/poc-barcodescanner/decode"
)

// Reader is a pull-based QR-only decoder.
type Reader struct{}

// New creates the goqr-backed reader.
func New() *Reader { return &Reader{} }

// Decode attempts to recognize one QR code in the frame. When several codes
// are present, the first recognized one wins.
func (r *Reader) Decode(img image.Image) (decode.Result, error) {
	codes, err := goqr.Recognize(img)
	if err != nil || len(codes) == 0 {
		// goqr reports "no code" as an error; either way it is a miss,
		// not a fault.
		return decode.Result{}, decode.ErrNoCode
	}

	return decode.Result{
		Text:      string(codes[0].Payload),
		Format:    decode.FormatQR,
		Timestamp: time.Now(),
	}, nil
}
