// Package publishing extracts a thumbnail, uploads the finished artifacts,
// and cleans up the job working directory.
package publishing
