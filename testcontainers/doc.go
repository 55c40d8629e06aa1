/*
Package testcontainers is meant to be run by implementors of vfsmount.Host to ensure that the behaviors of their host
match the expected behavior of the interface.  It uses the local Docker daemon to run Azurite, which emulates the blob
endpoint of a storage account.

Azurite has no identity provider, so containers are created with public access and hosts are given a client factory
that talks to the emulator anonymously.  Credential handling is covered by the unit tests of the backend/azure package.
*/
package testcontainers
