package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var errAPIKeyRequired = errors.New("tracker api key is required")

// resolveAPIKey returns the flag value, else the configured key, else asks
// on the terminal without echo. Non-interactive input without a key fails.
func resolveAPIKey(flagKey, configured string, in *os.File, prompt io.Writer) (string, error) {
	if key := strings.TrimSpace(flagKey); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(configured); key != "" {
		return key, nil
	}
	if in == nil || !term.IsTerminal(int(in.Fd())) {
		return "", errAPIKeyRequired
	}

	fmt.Fprint(prompt, "Linear API key: ")
	raw, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	key := strings.TrimSpace(string(raw))
	if key == "" {
		return "", errAPIKeyRequired
	}
	return key, nil
}
