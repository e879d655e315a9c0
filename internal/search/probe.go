package search

import (
	"net"
	"time"
)

// HasInternet is a best-effort connectivity probe: a short TCP connect to a
// well-known public resolver IP. Avoids DNS so it stays fast and fail-safe.
func HasInternet(timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", "1.1.1.1:53", timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
