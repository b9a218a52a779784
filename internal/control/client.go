package control

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

const dialTimeout = 2 * time.Second

// QueryStatus asks the listener behind socketPath for its status.
func QueryStatus(socketPath string) (Status, error) {
	var status Status
	err := roundTrip(socketPath, Request{Op: OpStatus}, &status)
	return status, err
}

// Health pings the listener.
func Health(socketPath string) error {
	var resp SimpleResponse
	if err := roundTrip(socketPath, Request{Op: OpHealth}, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("health: %s", resp.Message)
	}
	return nil
}

func roundTrip(socketPath string, req Request, out any) error {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("cannot connect to listener: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(dialTimeout))
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return err
	}
	return json.NewDecoder(conn).Decode(out)
}
