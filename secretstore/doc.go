/*
Package secretstore groups the vfsmount.SecretStore implementations.

  - mem: scopes and secrets held in memory, mostly for tests and embedding
  - env: scopes and secrets read from environment variables
  - keyvault: each scope is an Azure Key Vault, read with the azsecrets client
*/
package secretstore
