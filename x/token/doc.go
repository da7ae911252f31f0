/*
Package token keeps balances of external token assets.

Contrary to the cash package that manages the single native asset, this
package tracks any number of assets, each identified by its own address.
Balances are stored per (asset, holder) pair. The Ledger interface is the
only way other extensions interact with token funds, so an alternative
bookkeeping can be plugged in.
*/
package token
