// Package broadcaster publishes applied register mutations to Kafka
// using the transactional-outbox pattern: the store service records
// every mutation durably in the outbox, and this job drains pending
// entries, publishes them, and marks them published. A crash between
// apply and publish is therefore retried, never lost.
package broadcaster
