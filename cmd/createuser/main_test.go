package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	authdomain "dashboard/backend/internal/domain/auth"
	"dashboard/backend/internal/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubPassword(t *testing.T, pw string, err error) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), err }
	t.Cleanup(func() { readPassword = orig })
}

func TestParseArgsFromFlags(t *testing.T) {
	stubPassword(t, "unused", errors.New("must not prompt"))

	in, err := parseArgs([]string{"-email", "user@nextmail.com", "-name", "User", "-password", "123456"}, strings.NewReader(""), &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "user@nextmail.com", in.Email)
	assert.Equal(t, "User", in.Name)
	assert.Equal(t, "123456", in.Password)
}

func TestParseArgsPrompts(t *testing.T) {
	stubPassword(t, "secret-pw", nil)
	out := &bytes.Buffer{}

	in, err := parseArgs(nil, strings.NewReader("user@nextmail.com\nUser"), out)

	require.NoError(t, err)
	assert.Equal(t, "user@nextmail.com", in.Email)
	assert.Equal(t, "User", in.Name)
	assert.Equal(t, "secret-pw", in.Password)
	assert.Contains(t, out.String(), "Password: ")
}

func TestParseArgsPasswordReadFailure(t *testing.T) {
	stubPassword(t, "", errors.New("not a terminal"))

	_, err := parseArgs([]string{"-email", "a@b.co", "-name", "A"}, strings.NewReader(""), &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a terminal")
}

func TestDescribe(t *testing.T) {
	assert.EqualError(t, describe(authdomain.ErrEmailExists), "a user with this email already exists")
	assert.EqualError(t, describe(&validate.Error{Fields: map[string]string{"name": "Please enter a name."}}), "name: Please enter a name.")

	other := errors.New("boom")
	assert.Same(t, other, describe(other))
}
