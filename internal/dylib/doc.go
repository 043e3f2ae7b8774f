// Package dylib locates and opens native shared libraries.
//
// A Resolver walks an ordered list of candidates. Each one is tried by its bare
// name through the platform's standard search, then from a widened list of
// install directories. The widened list is the candidate's own directories and
// the shared extra directories, prepended to the search-path environment
// variable as it was when resolution started. Only the shared directories are
// written back to that variable. Libraries missing a required entry point are rejected.
// When every candidate fails, the returned *ResolveError lists each name and
// path that was tried.
//
// The platform loader uses purego on unix by default. With the sodium_cgo build
// tag it uses dlopen through cgo, and on Windows it uses LoadLibraryEx.
package dylib
