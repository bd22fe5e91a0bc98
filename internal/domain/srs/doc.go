// Package srs implements the fixed-bucket review scheduler.
//
// A card sits in one of six difficulty buckets (0 to 5). A correct answer
// promotes it one bucket and an incorrect answer demotes it one bucket; the
// bucket then selects the review interval from a fixed table of
// 1, 3, 7, 14, 30 and 60 days.
//
// Everything here is a pure function of its inputs and safe for concurrent
// use. Persisting the result is the caller's job.
package srs
