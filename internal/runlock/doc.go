// Package runlock serializes sync runs across processes. Two runs racing on
// the same document can interleave deletes and inserts, so a deployment
// with more than one writer takes a named lock in Redis before syncing.
package runlock
