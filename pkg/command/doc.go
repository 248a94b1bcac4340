// Package command defines the device-agnostic command set and routes
// commands to capability handlers.
//
// A Command is pure data: an operation from a closed set plus its arguments,
// carrying no device reference. Exec routes a command to a concrete device
// by trying the capability handlers the device's kind declares, in declared
// order, with the base-device capability always last. A handler either
// handles the command, or refuses it with ErrNotSupported so dispatch moves
// on. Any other error aborts dispatch immediately.
//
// The capability order per device kind lives in a static table built at
// startup. Adding a device kind means adding one table entry; nothing about
// the dispatch loop changes.
package command
