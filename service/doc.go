// Package service coordinates the register array with its
// infrastructure: sequencing, WAL intent logging, the durable outbox,
// and payload buffer recycling. StoreService is the only write entry
// point into the system.
package service
