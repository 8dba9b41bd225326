/*
Package session serializes access to stored diagrams.

Every read-modify-write of a diagram runs under a per-diagram lock: an
in-process, reference-counted mutex, optionally backed by a distributed lock
so that several server replicas can share one store.
*/
package session
