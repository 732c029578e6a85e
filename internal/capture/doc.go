// Package capture owns the request/read loop that drives one frame
// out of the device.
//
// Ownership boundary:
// - Transport collaborator surface
// - capture state machine and retry/attempt policy
// - parameter command round trips
//
// Blocking and timeout behavior of individual reads belongs to the
// Transport; this package layers only the attempt policy on top.
package capture
