package decode

import (
	"errors"
	"image"
	"time"
)

// ErrNoCode means no symbol was found in the frame. It is the expected
// outcome of most attempts, never a fault: the loop continues silently.
var ErrNoCode = errors.New("decode: no code in frame")

// Format tags a decoded symbology.
type Format string

// The recognized symbology set. Anything an engine decodes outside this set
// is reported as FormatUnknown.
const (
	FormatEAN13   Format = "EAN-13"
	FormatEAN8    Format = "EAN-8"
	FormatUPCA    Format = "UPC-A"
	FormatUPCE    Format = "UPC-E"
	FormatCode128 Format = "CODE-128"
	FormatCode39  Format = "CODE-39"
	FormatQR      Format = "QR"
	FormatUnknown Format = "unknown"
)

// Recognized reports whether f belongs to the recognized symbology set.
func Recognized(f Format) bool {
	switch f {
	case FormatEAN13, FormatEAN8, FormatUPCA, FormatUPCE,
		FormatCode128, FormatCode39, FormatQR:
		return true
	}
	return false
}

// Result is one decoded symbol. Immutable once created.
type Result struct {
	// Text is the decoded payload
	Text string
	// Format is the symbology tag, FormatUnknown if unrecognized
	Format Format
	// Timestamp is when the decode succeeded
	Timestamp time.Time
}

// Decoder attempts to locate and decode one symbol in a frame.
//
// Implementations must guarantee:
//   - a frame with no symbol returns ErrNoCode, not a fault
//   - an unrecognized symbology returns a Result with FormatUnknown,
//     not an error
//   - any other error is an engine fault for that frame only; the caller
//     keeps looping
type Decoder interface {
	Decode(img image.Image) (Result, error)
}

// DecodeFunc adapts a plain function to the Decoder interface.
type DecodeFunc func(img image.Image) (Result, error)

func (f DecodeFunc) Decode(img image.Image) (Result, error) { return f(img) }
