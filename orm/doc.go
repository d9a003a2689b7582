/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of model.
* Models are serialized with go-amino binary encoding.
* Easy queries for one and iteration over a key prefix.

Sequences provide monotonic counters stored next to the buckets they
serve.
*/
package orm
