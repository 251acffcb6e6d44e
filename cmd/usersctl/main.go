// Command usersctl is the operator CLI for a running usersvc API.
package main

import "github.com/usersvc/usersvc/internal/cli"

func main() {
	cli.Execute()
}
