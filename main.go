// Command indexnow provisions the IndexNow key file for the site and
// notifies IndexNow of new video pages.
package main

import (
	"github.com/JakeFAU/indexnow/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
