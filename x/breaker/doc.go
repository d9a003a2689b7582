/*
Package breaker holds the two switches that stop withdrawals.

Paused is the administrative switch toggled by holders of the pause
capability. Suspended is tripped automatically by the rate limiter and is
cleared with an explicit resume. Either one makes Guard fail.
*/
package breaker
