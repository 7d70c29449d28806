/*
Package donationpool implements a pool of donated funds released to
recipients in two steps.

Anyone can deposit into the pool. A distribution is first requested, which
validates it and stores it as pending without reserving any funds. The pool
admin then executes the request, paying out the net amount, or the
recipient cancels it. The fee kept by the pool is a percentage of the
requested amount, rounded down.

All pool settings are stored with gconf under the "donationpool" key. Only
the admin, chosen at genesis, can change them.

Funds are not held by this package. Every deposit and every payout is handed
to a transfer.Recorder.

The persisted models are declared in codec.proto. The Go types in model.go
carry the same field numbers in their protobuf tags.
*/
package donationpool
