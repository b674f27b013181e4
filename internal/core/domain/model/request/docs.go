// Package request holds the local snapshot of a beneficiary request: its
// status and, per requested item, the quantities requested and delivered so far.
//
// Requests are approved elsewhere; this service only reads their status and
// writes back delivered quantities, which may move a request to DELIVERED or
// PARTIALLY_DELIVERED.
package request
