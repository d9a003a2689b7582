/*
Package custody defines the interfaces shared by all parts of the custody
ledger service: storage, messages, handlers and decorators. It also contains
the small value types (Address, UnixTime, Fraction) that travel between
extensions.

Look into this package to get a brief overview of how an extension is built.
Every extension declares its messages, registers handlers for their paths and
may read its genesis section through an Initializer.
*/
package custody
