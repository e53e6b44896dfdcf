// Package msgs defines the session events published by a programmer and
// the typed envelope carrying them.
//
// Producer: k5cli (or any host driving a clone.Engine)
// Consumer: k5mon and other MQTT subscribers
package msgs
