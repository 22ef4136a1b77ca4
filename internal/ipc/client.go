package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/webdesk/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket, or override when set.
func NewClient(override string) *Client {
	socketPath, err := runtimepath.ResolveSocketPath(override)
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with payload and decodes the response data into out.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListWindows retrieves the open windows and the focused window.
func (c *Client) ListWindows() (*WindowsData, error) {
	return c.windowsCall(CommandListWindows, nil)
}

// OpenWindow opens a window and returns its record.
func (c *Client) OpenWindow(p OpenWindowPayload) (*WindowInfo, error) {
	var info WindowInfo
	if err := c.call(CommandOpenWindow, p, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CloseWindow closes a window. Unknown ids are ignored by the daemon.
func (c *Client) CloseWindow(id string) (*WindowsData, error) {
	return c.windowsCall(CommandCloseWindow, WindowTargetPayload{ID: id})
}

// MinimizeWindow toggles the minimized flag.
func (c *Client) MinimizeWindow(id string) (*WindowsData, error) {
	return c.windowsCall(CommandMinimizeWindow, WindowTargetPayload{ID: id})
}

// MaximizeWindow toggles the maximized flag.
func (c *Client) MaximizeWindow(id string) (*WindowsData, error) {
	return c.windowsCall(CommandMaximizeWindow, WindowTargetPayload{ID: id})
}

// MoveWindow sets a window's position.
func (c *Client) MoveWindow(id string, x, y int) (*WindowsData, error) {
	return c.windowsCall(CommandMoveWindow, MoveWindowPayload{ID: id, X: x, Y: y})
}

// ResizeWindow sets a window's size.
func (c *Client) ResizeWindow(id string, width, height int) (*WindowsData, error) {
	return c.windowsCall(CommandResizeWindow, ResizeWindowPayload{ID: id, Width: width, Height: height})
}

// FocusWindow focuses and raises a window.
func (c *Client) FocusWindow(id string) (*WindowsData, error) {
	return c.windowsCall(CommandFocusWindow, WindowTargetPayload{ID: id})
}

func (c *Client) windowsCall(command CommandType, payload any) (*WindowsData, error) {
	var data WindowsData
	if err := c.call(command, payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
