package bigraph

// Version is the release of the module. Release builds override it with
// -ldflags "-X github.com/aretw0/bigraph.Version=...".
var Version = "v0.1.0"
