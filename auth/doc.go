/*
Package auth resolves service principal credentials from a secret store and turns them into the OAuth
client-credentials configuration that accompanies every mount request.

The configuration always holds exactly five keys:

	fs.azure.account.auth.type              = OAuth
	fs.azure.account.oauth.provider.type    = org.apache.hadoop.fs.azurebfs.oauth2.ClientCredsTokenProvider
	fs.azure.account.oauth2.client.id       = <application id>
	fs.azure.account.oauth2.client.secret   = <client secret>
	fs.azure.account.oauth2.client.endpoint = https://login.microsoftonline.com/<tenant id>/oauth2/token
*/
package auth
