// Package decode defines the decoder capability consumed by the scan loop.
//
// A Decoder is pull-based: one call, one attempt, zero or one result. Engines
// that are push-based underneath (callback per frame) are unified through
// PushBuffer, which keeps the most recent callback result and surfaces it on
// the next pull, so the loop sees a single interface either way.
//
// The recognized symbology set is fixed: EAN-13, EAN-8, UPC-A, UPC-E,
// CODE-128, CODE-39 and QR. Engines that decode anything else report the
// format as "unknown" rather than failing the attempt.
package decode
