// Package thumbnail generates and serves 200x200 JPEG thumbnails for media
// files discovered by a scan.
//
// Images are decoded and resized in-process (imaging plus the x/image
// decoders, libvips for HEIC/HEIF). Videos shell out to ffmpeg with the
// hardware acceleration method selected by the accel package, retrying once
// with a plain software command when the optimized one fails. Thumbnail
// generation is best effort: any failure yields an empty handle and a log
// line, never an error that would abort a scan.
package thumbnail
