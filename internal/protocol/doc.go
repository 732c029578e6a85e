// Package protocol owns the ULS24 wire contract.
//
// Ownership boundary:
// - outbound command encoding (simple and framed variants)
// - inbound report classification
// - wire constants shared with the transports
package protocol
