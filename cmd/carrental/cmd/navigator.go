package cmd

import (
	"context"
	"fmt"
	"io"
)

// navigator tells the user on stderr that the session ended
type navigator struct {
	view string
	out  io.Writer
}

func (n *navigator) CurrentView() string {
	return n.view
}

func (n *navigator) SignedOut(_ context.Context) {
	fmt.Fprintln(n.out, "Your session has expired. Run `carrental login` to sign in again.")
}
