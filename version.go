package statekit

// Version is the statekit release, overridden at build time with
// -ldflags "-X github.com/aretw0/statekit.Version=...".
var Version = "0.1.0-dev"
