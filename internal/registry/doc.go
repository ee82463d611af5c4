// Package registry
// Author: momentics <momentics@gmail.com>
//
// Ordered registry of accepted client connections.
//
// Connections are addressed two ways. A position is the index in acceptance
// order and is only valid until the next removal: removing position i shifts
// every later connection down by one. A ConnID is stable for the life of the
// connection and is the safe handle to keep across ticks.
package registry
