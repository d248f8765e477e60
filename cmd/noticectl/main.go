// Command noticectl is the admin panel of the notice server: it logs in,
// lists the latest announcements and publishes new ones.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
