/*
Package utils provides decorators shared by every handler of the service:
panic recovery, logging and prometheus metrics.
*/
package utils
