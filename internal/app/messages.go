// Package app contains shared application-layer constants used across the
// offline-sync subsystem.
//
// All Msg* constants are human-readable message strings shown to the user
// to describe the outcome of a buffered mutation. Keeping them in one place
// ensures consistent wording throughout the client.
package app

const (
	// MsgChangeNotSaved is shown when the durable enqueue itself failed:
	// the change was lost entirely, which is a different situation from a
	// change waiting to sync.
	MsgChangeNotSaved = "your change could not be saved on this device"

	// MsgChangeSavedLocally is shown after a successful enqueue while
	// offline.
	MsgChangeSavedLocally = "saved on this device, will sync when back online"

	// MsgChangeOverwritten is shown for a conflict resolved in the
	// server's favor.
	MsgChangeOverwritten = "your change was overwritten by a more recent update"

	// MsgChangeFailedPermanently is shown for a parked item awaiting a
	// retry or discard decision.
	MsgChangeFailedPermanently = "this change could not be synced; retry or discard it"
)
