// Package library manages the completed-download directory: safe filenames,
// listing, deletion, and path resolution for file serving.
package library
