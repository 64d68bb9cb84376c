// Package fileutil writes output files atomically under an advisory lock so
// concurrent runs never leave a half-written document or report behind.
package fileutil
