// Package splitrequest contains the aggregate root of the split-shipment
// saga. A SplitRequest tracks one order's journey from the initial
// order-created event through splitting, holding, invoicing and the terminal
// outcomes, and owns the FulfillmentHold records placed on its behalf.
//
// The aggregate enforces the saga's state machine via the Status value
// object and is the single synchronization point for redelivered events:
// its unique primary order id plus the terminal-status check make duplicate
// processing a no-op.
package splitrequest
