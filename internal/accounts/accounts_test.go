package accounts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasic(t *testing.T) {
	input := strings.NewReader(`
# comment
alice:secret1

bob:secret2
malformed-line
carol:
:nopassword
dave:pass:word
`)
	creds, err := parse(input, nil)
	require.NoError(t, err)
	require.Len(t, creds, 3)
	assert.Equal(t, Credential{User: "alice", Password: "secret1"}, creds[0])
	assert.Equal(t, Credential{User: "bob", Password: "secret2"}, creds[1])
	assert.Equal(t, Credential{User: "dave", Password: "pass:word"}, creds[2])
}

func TestSingle(t *testing.T) {
	creds := Single("x", "y")
	assert.Equal(t, []Credential{{User: "x", Password: "y"}}, creds)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/accounts.txt", nil)
	assert.Error(t, err)
}
