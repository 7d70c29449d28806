/*
Package x contains the extensions of the pool application.

Extensions implement common functionality (Handler, Decorator, Initializer)
and are combined together by the app package into a single application.
This package itself holds the authentication helpers that every extension
uses to learn who signed the current transaction.
*/
package x
