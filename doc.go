// Powermate publishes a Griffin PowerMate dial onto the gohome event bus.
//
// Features
//
// - Dial rotation and button press/release as bus events
//
// - LED brightness and pulse control by command
//
// - Input event record size reporting, over the bus ("size" query) and as a
//   C ABI export (cmd/cstruct) for callers decoding raw evdev data
//
// - Prometheus metrics for events read and decode failures
package powermate
