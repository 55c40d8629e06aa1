package mount

import (
	"fmt"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/backend/azure"
	"github.com/c2fo/vfsmount/utils"
)

// Descriptor identifies one mount: the remote container and the local path it is bound to.
type Descriptor struct {
	// Container is the ADLS Gen2 container (filesystem) name, ie "raw"
	Container string

	// StorageAccount is the storage account name, ie "0xxx0storageaccountadls"
	StorageAccount string

	// MountPath is the absolute local mount point, ie "/mnt/raw"
	MountPath string
}

// Validate returns an error wrapping vfsmount.ErrInvalidDescriptor when a field is missing or malformed.
func (d Descriptor) Validate() error {
	switch {
	case d.Container == "":
		return fmt.Errorf("%w: container is empty", vfsmount.ErrInvalidDescriptor)
	case d.StorageAccount == "":
		return fmt.Errorf("%w: storage account is empty", vfsmount.ErrInvalidDescriptor)
	case d.MountPath == "":
		return fmt.Errorf("%w: mount path is empty", vfsmount.ErrInvalidDescriptor)
	}
	if err := utils.ValidateMountPath(d.MountPath); err != nil {
		return fmt.Errorf("%w: %w", vfsmount.ErrInvalidDescriptor, err)
	}
	if _, err := d.source(); err != nil {
		return fmt.Errorf("%w: %w", vfsmount.ErrInvalidDescriptor, err)
	}
	return nil
}

func (d Descriptor) source() (azure.Source, error) {
	return azure.NewSource(d.Container, d.StorageAccount)
}

// SourceURI returns the abfss URI of the container, ie
// abfss://raw@0xxx0storageaccountadls.dfs.core.windows.net/
func (d Descriptor) SourceURI() string {
	return azure.Source{Container: d.Container, Account: d.StorageAccount}.URI()
}

// Path returns the canonical form of MountPath
func (d Descriptor) Path() string {
	return utils.CleanMountPath(d.MountPath)
}

// String implements fmt.Stringer
func (d Descriptor) String() string {
	return fmt.Sprintf("%s -> %s", d.Path(), d.SourceURI())
}
