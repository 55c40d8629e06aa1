package azure

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/c2fo/vfsmount"
)

// MapError translates Azure SDK errors into the vfsmount error taxonomy.  Errors it does not recognize are returned
// unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var authErr *azidentity.AuthenticationFailedError
	if errors.As(err, &authErr) {
		return fmt.Errorf("%w: %w", vfsmount.ErrAuthentication, err)
	}

	if bloberror.HasCode(err, bloberror.ContainerNotFound) {
		return fmt.Errorf("%w: %w", vfsmount.ErrContainerNotFound, err)
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", vfsmount.ErrAuthentication, respErr.ErrorCode)
		case http.StatusNotFound:
			if respErr.ErrorCode == "FilesystemNotFound" {
				return fmt.Errorf("%w: %s", vfsmount.ErrContainerNotFound, respErr.ErrorCode)
			}
		}
	}
	return err
}
