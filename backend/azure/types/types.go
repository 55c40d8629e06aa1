// Package types provides types and interfaces for Azure operations.
package types

import "context"

// Item is one entry of a hierarchical container listing
type Item struct {
	// Name holds the full blob name or virtual directory prefix, relative to the container root.  Virtual
	// directories end in a slash.
	Name string

	// Size holds the content length of a blob and 0 for a virtual directory
	Size int64
}

// IsDir returns true for virtual directories
func (i Item) IsDir() bool {
	return len(i.Name) > 0 && i.Name[len(i.Name)-1] == '/'
}

// The Client interface contains methods that perform specific operations against an ADLS Gen2 container.  This
// interface is here so we can write mocks over the actual functionality.
type Client interface {
	// List should return the items directly beneath dir in the container, blobs and virtual directories alike.
	// dir is relative to the container root; "" and "/" both mean the root.
	List(ctx context.Context, dir string) ([]Item, error)

	// Probe should perform the cheapest authenticated call possible against the container and return an error
	// when the credentials are rejected or the container does not exist.
	Probe(ctx context.Context) error
}
