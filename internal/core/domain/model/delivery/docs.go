// Package delivery provides the Delivery aggregate of the humanitarian-aid
// authorization and fulfillment workflow.
//
// The package includes:
//   - Delivery: the aggregate root with one transition method per workflow action
//   - Status and Action: the transition graph
//   - Detail: line items (product or kit, optional lot, quantity)
//   - Deduction: stock allocations recorded when a delivery becomes READY
//   - HistoryRecord: the append-only audit trail entry produced by each transition
//   - Reception: beneficiary identity captured on delivery
//   - Event types persisted to the outbox
//
// Transition methods check the status graph and payload only. Whether the
// acting user may perform the action is decided by services.DutySegregationGuard.
package delivery
