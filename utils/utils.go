// Package utils provides path and error helpers shared by the vfsmount packages.
package utils

import (
	"errors"
	"path"
	"regexp"
	"strings"
)

const (
	// ErrBadAbsMountPath constant is returned when a mount path is not absolute
	ErrBadAbsMountPath = "mount path is invalid - must be absolute and may not be the root path"
)

// regex to test whether the last character is a '/'
var hasTrailingSlash = regexp.MustCompile("/$")

// regex to test whether the first character is a '/'
var hasLeadingSlash = regexp.MustCompile("^/")

// RemoveTrailingSlash removes trailing slash, if any
func RemoveTrailingSlash(p string) string {
	return strings.TrimRight(p, "/")
}

// RemoveLeadingSlash removes leading slash, if any
func RemoveLeadingSlash(p string) string {
	return strings.TrimLeft(p, "/")
}

// EnsureTrailingSlash adds a trailing slash if needed. It only ever uses / since mount paths are never Windows OS paths.
func EnsureTrailingSlash(dir string) string {
	if hasTrailingSlash.MatchString(dir) {
		return dir
	}
	return dir + "/"
}

// EnsureLeadingSlash is like EnsureTrailingSlash except that it adds the leading slash if needed.
func EnsureLeadingSlash(dir string) string {
	if hasLeadingSlash.MatchString(dir) {
		return dir
	}
	return "/" + dir
}

// CleanMountPath returns the canonical form of a mount path: cleaned, absolute and without a trailing slash, ie
// "/mnt/raw/" and "/mnt//raw" both become "/mnt/raw".
func CleanMountPath(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(EnsureLeadingSlash(p))
}

// ValidateMountPath ensures that a mount path is absolute and not the root of the namespace
func ValidateMountPath(p string) error {
	if !strings.HasPrefix(p, "/") || CleanMountPath(p) == "/" {
		return errors.New(ErrBadAbsMountPath)
	}
	return nil
}

// IsWithin returns true when p is the mount path itself or lives below it.  Both arguments are cleaned first.
func IsWithin(mountPath, p string) bool {
	mountPath = CleanMountPath(mountPath)
	p = CleanMountPath(p)
	return p == mountPath || strings.HasPrefix(p, EnsureTrailingSlash(mountPath))
}

// Ptr returns a pointer to the given value
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the value pointed to by p or the zero value when p is nil
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
