/*
Package cash is the asset ledger of the service. It keeps a balance for
every (asset, holder) pair and moves value between holders.

Assets may be configured with a transfer fee. A fee is deducted from the
amount credited to the receiver and burned, the way fee-on-transfer tokens
behave. The native asset never charges a fee.

PaymentDecorator moves the native value attached to a transaction from the
caller to the vault before the handler runs.
*/
package cash
