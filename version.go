package palisade

// Version is the current Palisade release.
var Version = "0.4.0"
