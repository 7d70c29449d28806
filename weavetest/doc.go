// Package weavetest provides helpers for testing handlers and decorators:
// principals, authenticators and transactions.
package weavetest
