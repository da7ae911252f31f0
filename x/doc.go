/*
Package x contains some standard extensions

Extensions implement common functionality (auth, token transfers, custody
bookkeeping) and are combined into a vault application by the app package.

This particular package contains some helpers shared among the various
extensions.
*/
package x
