/*
Package app assembles the vault application out of the extension packages.

It provides the message router, the decorator chain and the Vault type,
which is the single writer entry point that stamps every operation with a
timestamp, runs it through the decorator stack and commits the result to
the persistent store.
*/
package app
