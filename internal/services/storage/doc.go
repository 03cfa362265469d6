// Package storage publishes finished videos and thumbnails. The S3
// publisher targets any S3-compatible endpoint (Cloudflare R2 included);
// the local publisher keeps artifacts on disk for installs without a
// bucket configured.
package storage
