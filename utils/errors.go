package utils

import "fmt"

func wrap(prefix string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// WrapMountError returns a wrapped mount error
func WrapMountError(err error) error {
	return wrap("mount error", err)
}

// WrapUnmountError returns a wrapped unmount error
func WrapUnmountError(err error) error {
	return wrap("unmount error", err)
}

// WrapListError returns a wrapped list error
func WrapListError(err error) error {
	return wrap("list error", err)
}

// WrapMountsError returns a wrapped mount table error
func WrapMountsError(err error) error {
	return wrap("mount table error", err)
}

// WrapSecretError returns a wrapped secret store error
func WrapSecretError(err error) error {
	return wrap("secret store error", err)
}
