/*
Package cash keeps track of native asset balances.

Every address may own a wallet with a non-negative native balance. The
package exposes a controller to safely move funds between wallets and a
handler to credit deposits. All spending paths go through MoveCoins which
refuses to overdraw the source wallet.
*/
package cash
