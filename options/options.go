// Package options defines the functional option contract used to configure managers, hosts and secret stores.
package options

// Option interface contains functions that should be implemented by any custom option that configures a *T.
// Example:
// ```
//
//	type readOnlyOpt struct{}
//	func (o readOnlyOpt) Apply(h *Host) {
//		h.readOnly = true
//	}
//	func (o readOnlyOpt) OptionName() string {
//		return "readOnly"
//	}
//
// ```
type Option[T any] interface {
	// Apply applies the option to the target
	Apply(*T)

	// OptionName returns the name of the option
	OptionName() string
}

// ApplyOptions applies each non-nil option to target, in order.  Later options win when two options set the same
// field.
func ApplyOptions[T any](target *T, opts ...Option[T]) {
	for _, o := range opts {
		if o != nil {
			o.Apply(target)
		}
	}
}
