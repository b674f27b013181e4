// Package kernel provides the shared value objects of the delivery workflow domain.
//
// The package includes:
//   - UUID: identifier of deliveries, requests, lots, products, kits and actors
//   - ItemRef: reference to a requestable item, either a product or a kit
//
// Both are immutable and comparable, so they can be used as map keys when
// quantities are aggregated per item or per lot.
package kernel
