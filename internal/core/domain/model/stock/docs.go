// Package stock models the parts of the stock ledger the delivery workflow
// touches: lots of a product and the composition of kits.
//
// A lot is the unit of deduction. Quantities only change through Deduct and
// Restore, both of which bump the lot version for optimistic writes.
package stock
