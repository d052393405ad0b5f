/*
Package streamhouse provides a typed ClickHouse client over the HTTP
interface, speaking the RowBinaryWithNamesAndTypes wire format.

Rows are the unit of iteration: a user type implements the Row interface
(an ordered column list plus a symmetric decode/encode pair), and the
client maps it against the schema the server advertises at the head of
every response. Queries stream — rows are decoded as bytes arrive and the
consumer's pull is the unit of backpressure. Inserts stream symmetrically:
a lazy row source is chunked into a single request body that is never
materialized in full.

# Usage

For runnable examples see examples_test.go. The short of it:

	client, err := streamhouse.Builder().
		WithURL("http://localhost:8123/").
		Build()

	rows, err := streamhouse.Query[Developer](ctx, client,
		"SELECT name, favorite_color, age FROM developers ORDER BY name")

# Concurrency

A Client is safe for concurrent use by multiple goroutines and is cheap to
share: it holds a transport handle and immutable configuration. Individual
Rows streams are not safe for concurrent use; each goroutine should run its
own query.

# Compatibility

The wire codec targets the ClickHouse RowBinaryWithNamesAndTypes format as
served by the HTTP interface. Column types outside the supported set are
reported as UnsupportedColumnError at header-negotiation time.
*/
package streamhouse
