// Package integration holds the domain model of marketplace product
// synchronization: the platform client ports, the offer-export job state
// machine, the enriched product representation and the identity
// reconciliation rules that decide whether an incoming platform item becomes
// a new internal product, a new link on an existing product, or nothing.
//
// Adapters for concrete platforms live in infrastructure/ecommerce; the
// orchestration of a sync run lives in application/integration.
package integration
