package pricing

import (
	"fmt"
	"strings"
)

// Kind is the option right: call or put.
type Kind int

const (
	CallOption Kind = iota
	PutOption
)

func (k Kind) String() string {
	if k == PutOption {
		return "put"
	}
	return "call"
}

// ParseKind accepts "call"/"put" and the one-letter forms, in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return CallOption, nil
	case "put", "p":
		return PutOption, nil
	}
	return CallOption, fmt.Errorf("unknown option type %q", s)
}

// Evaluate returns the bundle for the given kind.
func Evaluate(kind Kind, in Inputs) Bundle {
	if kind == PutOption {
		return PutBundle(in)
	}
	return CallBundle(in)
}

// MarshalText encodes the kind as "call" or "put".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the forms understood by ParseKind.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
