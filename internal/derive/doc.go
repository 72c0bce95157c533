// Package derive turns a build mode and a project layout into the complete
// configuration consumed by the bundler.
//
// Everything here is a pure function of its inputs except the directory
// reads, which go through the FileSystem interface. BuildConfiguration is
// the single entry point a host needs; the smaller functions are exported
// so each derivation step can be exercised on its own.
//
// Derivation either fully succeeds or returns one
// *errors.ConfigurationError naming every problem found. It never returns a
// partial configuration.
package derive
