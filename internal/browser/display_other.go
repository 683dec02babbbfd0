//go:build !linux

package browser

// Desktop platforms other than Linux always have a session for the URL
// handler; a missing browser makes the open call fail instead.
func hasDisplay() bool {
	return true
}
