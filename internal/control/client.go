package control

import (
	"context"
	"fmt"
	"net"
)

// Send connects to the control endpoint and writes each command on its own
// line, then closes the connection.
func Send(ctx context.Context, network, address string, commands ...string) error {
	if network == "" {
		network = "unix"
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", address, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
	}
	for _, cmd := range commands {
		if _, err := fmt.Fprintf(conn, "%s\n", cmd); err != nil {
			return fmt.Errorf("send %s: %w", cmd, err)
		}
	}
	return nil
}
