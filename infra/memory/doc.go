// Package memory provides the low-level primitives for payload buffer
// reuse and deferred reclamation. It includes the BufferPool used for
// register payloads and the RetireRing that collects buffers released
// by ref drop hooks until the reclaim job drains them back into the
// pool.
//
// The memory package is dependency-free and forms the foundation for
// concurrent buffer recycling in the store service.
package memory
