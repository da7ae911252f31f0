/*
Package coffer defines the common interfaces that tie the custody vault
together: identity conditions and addresses, the KV store family with
cache-wrap support, messages and handlers, and the context helpers that
carry the clock and the logger through an operation.

The heavy lifting happens in the subpackages. The store packages provide
in-memory and durable storage, orm adds buckets and sequences on top,
and x/custody implements the quorum-controlled payment state machine.
*/
package coffer
