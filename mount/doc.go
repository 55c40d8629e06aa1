/*
Package mount converges a host's mount table onto requested mounts.

A Manager is a pure client of a vfsmount.Host.  It never caches the mount table: every mutation is preceded by a
fresh read of Host.Mounts, because other processes may change the table at any time.

EnsureMount follows a check-then-unmount policy.  If the mount path is already bound, to the same container or a
different one, the binding is removed first and the container is mounted again with the supplied auth config.
Unmount of a path that is not bound is a no-op at the Manager level, while Host.Unmount itself reports
vfsmount.ErrNotMounted.

	mgr := mount.NewManager(host, mount.WithLogger(logger))
	err := mgr.EnsureMount(ctx, mount.Descriptor{
		Container:      "raw",
		StorageAccount: "0xxx0storageaccountadls",
		MountPath:      "/mnt/raw",
	}, cfg)
*/
package mount
