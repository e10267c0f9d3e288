package model

// Identity is the opaque per-device token correlating a user with their
// participant records across reconnects. It is generated once per device
// and never regenerated while the device's local storage persists.
type Identity string
