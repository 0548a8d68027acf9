// Package engine contains the simulation loop and the systems built on
// top of the companion domain: the steward session, the vitals
// heartbeat, expeditions and the arcade.
//
// ARCHITECTURAL RULE: systems mutate state only through the Session,
// which serializes access, appends journal events and persists a
// snapshot after every mutation.
package engine
