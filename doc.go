// Package carve implements content-aware image resizing by seam carving:
// repeatedly finding and removing (or, for enlargement, inserting) the
// connected path of pixels that contributes least to an energy map derived
// from local contrast.
//
// The package works purely on in-memory pixel buffers (see PixelBuffer) and
// never touches image codecs or a display surface; decoding a file into a
// PixelBuffer and encoding the result back out is left to the caller, the
// same way the reference cmd/carve driver does it.
//
// A Carver is built once for a source image and can then be resized down,
// up, or both, any number of times; each resize only computes the
// additional seams needed to reach the new target, reusing previously
// found seams exactly as the original would have removed or inserted them.
package carve
