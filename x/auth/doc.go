/*
Package auth attaches caller identities to the request context.

The vault entry point establishes who issues an operation and stamps the
fulfilled conditions into the context. Handlers never look at the context
directly, they go through the x.Authenticator interface implemented here.
*/
package auth
