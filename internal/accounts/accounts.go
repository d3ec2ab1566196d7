// Package accounts reads the load generator's accounts file: one
// "username:password" credential per line.
package accounts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Credential is a single login pair.
type Credential struct {
	User     string
	Password string
}

// Load reads credentials from the file at path.
//
// Precondition: path must name a readable UTF-8 file.
// Postcondition: Returns every well-formed "username:password" line found;
// blank lines and lines starting with '#' are skipped; malformed lines are
// logged and skipped rather than treated as fatal.
func Load(path string, logger *zap.Logger) ([]Credential, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("accounts.Load: opening %s: %w", path, err)
	}
	defer f.Close()

	return parse(f, logger)
}

// Single returns a one-element credential slice for --user/--password mode.
func Single(user, password string) []Credential {
	return []Credential{{User: user, Password: password}}
}

func parse(r io.Reader, logger *zap.Logger) ([]Credential, error) {
	var creds []Credential
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, ':')
		if idx <= 0 || idx == len(line)-1 {
			if logger != nil {
				logger.Warn("accounts: skipping malformed line",
					zap.Int("line", lineNo))
			}
			continue
		}

		user := strings.TrimSpace(line[:idx])
		pass := strings.TrimSpace(line[idx+1:])
		if user == "" || pass == "" {
			if logger != nil {
				logger.Warn("accounts: skipping malformed line",
					zap.Int("line", lineNo))
			}
			continue
		}

		creds = append(creds, Credential{User: user, Password: pass})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("accounts.parse: scanning: %w", err)
	}
	return creds, nil
}
