// Package text provides a DataSource which reads lines from files. Each file is divided into
// one or more Partitions of contiguous lines, and lines may optionally be parsed into other
// elements (such as Rows) by a LineParser.
package text
