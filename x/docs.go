/*
Package x contains the custody extensions.

Extensions implement handlers, decorators and initializers, and are combined
together by the app package to construct the service.

This package declares what all extensions share: the capabilities a caller
may hold and the Authorizer used to check them. Access control is decoupled
from storage, extensions only ever ask an Authorizer.
*/
package x
