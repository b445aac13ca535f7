// Package observer meters datagram traffic and hands periodic totals to a Reporter.
package observer

type Reporter interface {
	Report(total, delta uint64)
}
