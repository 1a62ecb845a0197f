package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"

	"github.com/chupakbra/pbadm/internal/client"
	"github.com/chupakbra/pbadm/internal/collection"
	"github.com/chupakbra/pbadm/internal/profile"
)

// Handle maps library sentinel errors to friendly user-facing messages and
// returns a formatted error that Cobra will print before exiting with code 1.
func Handle(serverURL string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case stderrors.Is(err, client.ErrEndpointNotConfigured):
		return fmt.Errorf("this server profile has no endpoint for that operation; set user-update-path / user-delete-path with 'pbadm server add'")
	case stderrors.Is(err, collection.ErrUnsupported):
		return fmt.Errorf("not supported: the active data source cannot save this change")
	case stderrors.Is(err, collection.ErrNotFound), client.IsNotFound(err):
		return fmt.Errorf("not found: the requested record does not exist")
	case client.IsNotAuthorized(err):
		return fmt.Errorf("permission denied: the server refused this operation")
	case stderrors.Is(err, collection.ErrNoSession):
		return fmt.Errorf("nothing to save: no edit in progress")
	case stderrors.Is(err, profile.ErrPasswordMismatch):
		return fmt.Errorf("new passwords do not match")
	case stderrors.Is(err, profile.ErrPasswordTooShort):
		return fmt.Errorf("password must be at least %d characters", profile.MinPasswordLength)
	case stderrors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("the operation timed out; check the server is reachable")
	case isConnectionError(err):
		if serverURL != "" {
			return fmt.Errorf("could not connect to %s; check the server URL and your network", serverURL)
		}
		return fmt.Errorf("could not connect to the server; check the server URL and your network")
	default:
		return err
	}
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	if stderrors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if stderrors.As(err, &dnsErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "i/o timeout")
}
