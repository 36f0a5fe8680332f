package main

import "cybermap/core/appbootstrap"

func main() {
	appbootstrap.Run()
}
