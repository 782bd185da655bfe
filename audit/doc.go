// Package audit delivers session lifecycle events asynchronously to a sink.
//
// # Components
//
//   - [Sink]: event consumer (channel, JSON lines, logrus, no-op).
//   - [Dispatcher]: buffered async relay with an event type filter and
//     per-type drop counts. A full queue drops or blocks; signing key
//     failures always wait for room.
//   - [Event]: one record: timestamp, type, cookie, subject, client IP and
//     outcome.
//
// The session package decides which events to emit. Events never carry
// token text or signing keys.
package audit
