/*
Package vfsmount manages mounts of Azure Data Lake Storage Gen2 containers into a local path namespace.

# Overview

A mount binds a local path such as /mnt/raw to a remote container addressed with the ABFS scheme:

	abfss://raw@myaccount.dfs.core.windows.net/

Authentication uses the OAuth client-credentials flow. The tenant id, application (client) id, and client
secret are read once from a SecretStore, turned into a fixed-shape configuration, and handed to a Host along
with the mount request. The Host owns the mount table; this package and its sub-packages are pure clients of
it.

# Packages

  - auth: credential bundle resolution and the OAuth configuration mapping
  - mount: the mount manager (list, ensure, unmount, verify)
  - backend/azure: ADLS Gen2 listing and credential probing used by hosts
  - host/mem, host/bolt: Host implementations (in memory, persisted in bbolt)
  - secretstore/mem, secretstore/env, secretstore/keyvault: SecretStore implementations

# Usage

	store := keyvault.NewStore(keyvault.WithScopes(keyvault.Scope{Name: "kv-databricks", VaultURL: vaultURL}))
	bundle, err := auth.ResolveCredentials(ctx, store, "")
	if err != nil {
		return err
	}
	cfg, err := auth.BuildAuthConfig(bundle)
	if err != nil {
		return err
	}

	mgr := mount.NewManager(host)
	d := mount.Descriptor{Container: "raw", StorageAccount: "myaccount", MountPath: "/mnt/raw"}
	if err := mgr.EnsureMount(ctx, d, cfg); err != nil {
		return err
	}
	entries, err := mgr.VerifyMount(ctx, d.MountPath)

# Errors

Every failure is returned to the caller wrapping one of the Err constants of this package. Nothing is
retried.
*/
package vfsmount
