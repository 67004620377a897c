// Package store is the optional SQLite log of dashboard interactions.
//
// Every control change handled by the dispatcher can be recorded as an
// invocation (control and selection) and a completion (outcome case, trace
// count, error text), joined by the interaction's flow token. The log is
// for diagnostics only: the dashboard never reads it back to serve a page.
//
// # Ordering
//
// Rows are ordered by seq, the dispatcher's logical clock, never by wall
// time. A restarted server resumes its clock from LastSeq so seq stays
// monotonic across runs sharing one database.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: A completion needs its invocation
package store
