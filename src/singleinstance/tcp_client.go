package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"
)

type tcpClient struct{}

func newTCPClient() Client { return &tcpClient{} }

func (c *tcpClient) TryAsk(ctx context.Context) (bool, string, error) {
	dialTimeout := 2 * time.Second
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if !ping(addr, dialTimeout) {
			continue
		}
		conn, err := net.DialTimeout("tcp", addr, dialTimeout)
		if err != nil {
			continue
		}
		w := bufio.NewWriter(conn)
		if _, err := w.WriteString(askRequest); err != nil {
			conn.Close()
			return true, "", err
		}
		if err := w.Flush(); err != nil {
			conn.Close()
			return true, "", err
		}
		// No read deadline: the resident's dispatch has no time bound,
		// beyond ctx cancellation.
		if dl, ok := ctx.Deadline(); ok {
			_ = conn.SetReadDeadline(dl)
		}
		br := bufio.NewReader(conn)
		status, err := br.ReadString('\n')
		if err != nil {
			conn.Close()
			return true, "", err
		}
		body, _ := io.ReadAll(br)
		conn.Close()
		switch status {
		case "SUCCESS\n":
			return true, string(body), nil
		case "ERROR\n":
			return true, "", errors.New(string(body))
		default:
			return true, "", errors.New("unexpected response from resident")
		}
	}
	return false, "", nil
}
