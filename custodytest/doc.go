// Package custodytest provides helpers for testing custody extensions:
// deterministic signing keys, a transaction implementation, mock handlers and
// decorators and a ready to use operation context.
package custodytest
