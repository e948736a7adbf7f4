package http

import (
	"errors"
	"fmt"
	"net/url"
)

// ParseServerURL parses and validates the base address of a server. The
// address must be an absolute http or https URL with a host.
func ParseServerURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{Kind: KindInvalidURL, Err: err}
	}
	switch {
	case !u.IsAbs():
		return nil, &Error{Kind: KindInvalidURL, Err: fmt.Errorf("%q is not an absolute URL", rawURL)}
	case u.Scheme != "http" && u.Scheme != "https":
		return nil, &Error{Kind: KindInvalidURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	case u.Host == "":
		return nil, &Error{Kind: KindInvalidURL, Err: fmt.Errorf("%q has no host", rawURL)}
	}
	return u, nil
}

// ValidCommand reports whether name can be used as a command name: a
// non-empty single path segment that needs no escaping.
func ValidCommand(name string) error {
	switch {
	case name == "":
		return errors.New("empty command name")
	case name == "." || name == "..":
		return fmt.Errorf("command name %q is a dot segment", name)
	case url.PathEscape(name) != name:
		return fmt.Errorf("command name %q is not a single plain path segment", name)
	}
	return nil
}

// JoinCommand resolves the command name against base. The command replaces
// the whole path of base, so the result is the same for every base that
// shares an origin; query and fragment are dropped. Invalid names are
// reported as KindInvalidURL errors.
func JoinCommand(base *url.URL, command string) (*url.URL, error) {
	if base == nil || !base.IsAbs() || base.Host == "" {
		return nil, &Error{Kind: KindInvalidURL, Command: command, Err: errors.New("no absolute server URL")}
	}
	if err := ValidCommand(command); err != nil {
		return nil, &Error{Kind: KindInvalidURL, Command: command, Err: err}
	}
	return base.ResolveReference(&url.URL{Path: "/" + command}), nil
}
