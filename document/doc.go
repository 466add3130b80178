// Package document loads sources into text documents and splits them into
// chunks for indexing.
//
// Loading and splitting are thin wrappers over langchaingo's document
// loaders and recursive-character text splitter; the only logic of our own
// is source-type dispatch (file, directory, URL), concurrent directory
// loading, and start-offset metadata on chunks.
package document
