// Package services holds the domain services of the delivery workflow: rules
// that need more than one aggregate, or that are pure decisions the workflow
// asks before it touches an aggregate.
//
// The package includes:
//   - DutySegregationGuard: decides whether an actor may perform an action on a delivery
//   - InventoryCoordinator: turns line items into lot deductions and reverses them
//   - FulfillmentTracker: keeps delivery quantities within what the request asked for
//   - NotificationRouter: maps a delivery status to the role that must act next
//
// None of the services do I/O. Callers load the aggregates, ask the service,
// and persist the result within one unit of work.
package services
