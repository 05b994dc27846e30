// trackctl feeds samples to a running trackrecd and inspects the files it
// writes.
package main

func main() {
	Execute()
}
