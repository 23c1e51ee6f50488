// Package state keeps the canonical state of every bulb group the hub has
// seen, independent of whether radio transmissions reached the bulbs.
//
// A GroupState is patched from inbound requests and projected into the field
// set reported on the message bus. Which fields are reported depends on the
// bulb mode: hue and saturation only in colour mode, colour temperature only
// in white mode, scene index only in scene mode. Night mode is an overlay
// on top of the base mode and never replaces it.
//
// Nothing in this package locks. The controller worker is the only writer;
// other goroutines see state through the reports it publishes.
//
// Persistence goes through a Repository. SQLiteRepository stores one JSON
// snapshot per bulb key in the bulb_states table.
package state
