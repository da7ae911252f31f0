/*
Package custody implements a quorum controlled vault.

A fixed set of owners shares control over funds held by the vault. Any owner
can propose a payment of the native asset or of a token asset. Owners then
approve the proposal, and the approval that reaches the configured threshold
releases the funds within the same operation. Approvals are only accepted
during a limited window after the proposal creation, an expired proposal is
permanently inert.

Executing a payment is guarded twice: the proposal is marked executed before
any funds move, and an in flight flag rejects any operation that re-enters
the executor while a transfer is still running. A failed transfer rolls the
whole operation back, including the executed mark, so the payment can be
retried.

The proposal ledger is append only. Proposals are never deleted and serve as
an audit trail.
*/
package custody
