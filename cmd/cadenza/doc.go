// Command cadenza is the CLI for the concert tagging pipeline: it ingests
// catalog records, runs the classification pipeline, and inspects the
// work queue.
package main
