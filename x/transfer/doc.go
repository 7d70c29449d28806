/*
Package transfer records the movement of funds between addresses.

The pool does not hold real funds. Instead every deposit and every executed
distribution leaves a Transfer entry that a host ledger can replay. Entries
are append-only and indexed by both source and destination.

The Transfer model is declared in codec.proto.
*/
package transfer
