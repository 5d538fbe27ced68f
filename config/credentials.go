package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables holding the operator credentials.
const (
	EnvUser      = "AIRDESK_USER"
	EnvPassword  = "AIRDESK_PASS"
	EnvWorkplace = "AIRDESK_WORKPLACE"
)

// ErrIncompleteCredentials is returned when any credential value is missing or unusable.
var ErrIncompleteCredentials = errors.New("incomplete credentials")

// Credentials identify the operator and the workplace to book.
type Credentials struct {
	Username    string
	Password    string
	WorkplaceID uint64
}

// EnvCredentials reads credentials from the process environment on every call.
type EnvCredentials struct {
	// Lookup defaults to os.LookupEnv.
	Lookup func(key string) (string, bool)
}

// Credentials returns the three required values, or ErrIncompleteCredentials
// naming every variable that is absent or invalid.
func (e EnvCredentials) Credentials() (Credentials, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var missing, invalid []string
	// Values are returned as given; blank ones only count as missing.
	get := func(key string) string {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
		return v
	}

	creds := Credentials{
		Username: get(EnvUser),
		Password: get(EnvPassword),
	}
	if raw := strings.TrimSpace(get(EnvWorkplace)); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			invalid = append(invalid, EnvWorkplace)
		}
		creds.WorkplaceID = id
	}

	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("%w: missing %s", ErrIncompleteCredentials, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Credentials{}, fmt.Errorf("%w: invalid %s", ErrIncompleteCredentials, strings.Join(invalid, ", "))
	}
	return creds, nil
}

// StaticCredentials returns fixed values; handy for tests and embedding.
type StaticCredentials struct {
	Creds Credentials
	Err   error
}

// Credentials implements the credential source contract.
func (s StaticCredentials) Credentials() (Credentials, error) {
	if s.Err != nil {
		return Credentials{}, s.Err
	}
	return s.Creds, nil
}
