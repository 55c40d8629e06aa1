package vfsmount

// Error is a type that allows for error constants below
type Error string

// Error returns a string representation of the error
func (e Error) Error() string { return string(e) }

const (
	// ErrNoScopeConfigured - no secret scope exists, or the requested scope is unknown
	ErrNoScopeConfigured = Error("no secret scope configured")

	// ErrCredentialNotFound - a required key is absent from the secret scope
	ErrCredentialNotFound = Error("credential not found in secret scope")

	// ErrNotMounted - unmount was requested for a path that is not mounted
	ErrNotMounted = Error("path is not mounted")

	// ErrMountConflict - the mount point is already bound to a source
	ErrMountConflict = Error("mount point is already in use")

	// ErrAuthentication - the identity provider rejected the credentials
	ErrAuthentication = Error("authentication failed")

	// ErrInvalidDescriptor - a mount descriptor is missing fields or uses an invalid name or path
	ErrInvalidDescriptor = Error("invalid mount descriptor")

	// ErrInvalidAuthConfig - an OAuth configuration mapping does not have the required shape
	ErrInvalidAuthConfig = Error("invalid auth config")

	// ErrInvalidSource - a source URI is not a valid abfss:// URI
	ErrInvalidSource = Error("invalid abfss source uri")

	// ErrContainerNotFound - the remote container does not exist
	ErrContainerNotFound = Error("container not found")
)
