/*
Package vault implements deposits into the custody vault and withdrawals
out of it.

A withdrawal is authorized by the signatures of a registered committee over
a digest binding the withdrawal id, the service domain and instance, and the
action. Every id can be executed at most once. Withdrawals through the
standard entry point are rate limited, a withdrawal that would exceed the
asset cap is not executed and suspends the service. Withdrawals to
allowlisted receivers bypass the rate limit.
*/
package vault
