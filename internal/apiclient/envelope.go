package apiclient

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Envelope statuses as sent by the backend.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorKind classifies why a call failed.
type ErrorKind int

const (
	KindNone      ErrorKind = iota
	KindTransport           // network unreachable, DNS, TLS, cancelled request
	KindTimeout             // per-call deadline exceeded
	KindBackend             // non-2xx or status "error"
	KindMalformed           // 2xx with a body we cannot read
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindBackend:
		return "backend"
	case KindMalformed:
		return "malformed"
	}
	return "unknown"
}

// Pagination is the optional paging block of list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// UnmarshalJSON accepts numbers and numeric strings; the backend sends both.
func (p *Pagination) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	fields := map[string]*int{
		"page":        &p.Page,
		"limit":       &p.Limit,
		"total":       &p.Total,
		"total_pages": &p.TotalPages,
	}
	for name, dst := range fields {
		v, ok := raw[name]
		if !ok {
			continue
		}
		n, err := looseInt(v)
		if err != nil {
			return fmt.Errorf("pagination.%s: %w", name, err)
		}
		*dst = n
	}
	return nil
}

func looseInt(b json.RawMessage) (int, error) {
	if string(b) == "null" {
		return 0, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		i, err := strconv.Atoi(n.String())
		return i, err
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// Envelope is the result of every backend call. It never carries a Go error:
// failures are described by Status, Message and Kind.
type Envelope[T any] struct {
	Status     string      `json:"status"`
	Data       T           `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Message    string      `json:"message,omitempty"`

	Kind       ErrorKind `json:"-"`
	HTTPStatus int       `json:"-"`
}

// OK reports whether the call succeeded.
func (e Envelope[T]) OK() bool { return e.Status == StatusSuccess }

// Success wraps data in a success envelope.
func Success[T any](data T) Envelope[T] {
	return Envelope[T]{Status: StatusSuccess, Data: data}
}

// Fail builds an error envelope. msg must be non-empty.
func Fail[T any](kind ErrorKind, msg string) Envelope[T] {
	return Envelope[T]{Status: StatusError, Kind: kind, Message: msg}
}
