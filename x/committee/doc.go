/*
Package committee keeps the registry of signing committees and verifies
committee signatures.

A committee is an ordered list of signers, each with a voting power. It is
identified by the keccak256 hash of the ABI encoding of its member list, so
the order of members is part of its identity. Registered committees are
immutable, changing the membership means revoking one committee and
registering another.
*/
package committee
