// Package bridge is the program owning the admin record lifecycle:
// it registers one record per signer at a deterministic derived
// address and rotates the record's external key when the current key
// signs off. Records are created once and never closed.
package bridge
