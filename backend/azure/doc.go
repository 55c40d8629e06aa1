/*
Package azure talks to Azure Data Lake Storage Gen2 containers on behalf of a mount host.

A container is addressed with an abfss:// uri:

	abfss://{container}@{account}.dfs.core.windows.net/

The data lake (dfs) and blob endpoints of a hierarchical-namespace account serve the same data, so the client
lists through the blob endpoint with azblob, using "/" as the hierarchy delimiter.

Usage

	src, err := azure.ParseSource("abfss://raw@myaccount.dfs.core.windows.net/")
	if err != nil {
		return err
	}
	client, err := azure.NewClient(src, authConfig, azure.NewOptions())
	if err != nil {
		return err
	}
	if err := client.Probe(ctx); err != nil {
		return err // wraps vfsmount.ErrAuthentication when the service principal is rejected
	}
	items, err := client.List(ctx, "/deep_dive/")

Authentication

The client authenticates with azidentity.ClientSecretCredential built from the OAuth client-credentials
configuration carried with the mount (see package auth).  The tenant and authority host come from the token
endpoint in that configuration.  Requests are never retried.

Options

NewOptions reads VFSMOUNT_AZURE_SERVICE_URL to override the blob endpoint, ie for a private endpoint.
*/
package azure
