// Package actor models the person invoking a workflow action: an identifier
// plus the closed set of capabilities supplied by the identity provider.
//
// Capabilities are bit flags over {Authorizer, Warehouse, Dispatcher, Admin}.
// Admin grants every other capability, but it is only a capability: identity
// based segregation rules still apply to administrators.
package actor
