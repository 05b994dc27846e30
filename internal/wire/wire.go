// Package wire implements the sample message codec of the collector.
//
// A request is a UTF-8 JSON array holding exactly dim numbers, e.g.
// [1.0, 2.0]. Every accepted request is answered with the fixed payload
// "ok". There is no envelope or length prefix: ZeroMQ frames delimit
// messages.
package wire

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/xtxerr/trackrec/config"
	"github.com/xtxerr/trackrec/internal/errors"
)

var (
	ackPayload  = []byte(config.Ack)
	nullLiteral = []byte("null")
)

// Ack returns the reply payload. The slice is freshly allocated.
func Ack() []byte {
	return append([]byte(nil), ackPayload...)
}

// IsAck reports whether payload is exactly the reply payload.
func IsAck(payload []byte) bool {
	return bytes.Equal(payload, ackPayload)
}

// DecodeSample parses payload as a JSON array of exactly dim numbers.
//
// The returned error wraps ErrMalformedMessage when the payload is not a
// JSON array, ErrWrongArity when the element count differs from dim, and
// ErrNonNumeric when an element is not a number. Numbers beyond the float64
// range decode to ±Inf.
func DecodeSample(payload []byte, dim int) ([]float64, error) {
	if len(payload) > config.DefaultMaxMessageSize {
		return nil, fmt.Errorf("payload of %d bytes exceeds %d: %w",
			len(payload), config.DefaultMaxMessageSize, errors.ErrMalformedMessage)
	}

	// A bare null would decode into a nil slice without error.
	if bytes.Equal(bytes.TrimSpace(payload), nullLiteral) {
		return nil, fmt.Errorf("decode %q: not an array: %w", truncate(payload), errors.ErrMalformedMessage)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(payload, &elems); err != nil {
		return nil, fmt.Errorf("decode %q: %v: %w", truncate(payload), err, errors.ErrMalformedMessage)
	}
	if len(elems) != dim {
		return nil, fmt.Errorf("got %d values, want %d: %w", len(elems), dim, errors.ErrWrongArity)
	}

	values := make([]float64, dim)
	for i, raw := range elems {
		raw = bytes.TrimSpace(raw)
		if bytes.Equal(raw, nullLiteral) {
			return nil, fmt.Errorf("element %d is null: %w", i, errors.ErrNonNumeric)
		}
		if err := json.Unmarshal(raw, &values[i]); err != nil {
			v, ok := outOfRange(raw)
			if !ok {
				return nil, fmt.Errorf("element %d %q: %w", i, raw, errors.ErrNonNumeric)
			}
			values[i] = v
		}
	}

	return values, nil
}

// outOfRange decodes a well-formed JSON number whose magnitude does not fit
// a float64. Overflow yields ±Inf and underflow yields ±0.
func outOfRange(raw []byte) (float64, bool) {
	if len(raw) == 0 || !(raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) || !json.Valid(raw) {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err == nil {
		return v, true
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
		return v, true
	}
	return 0, false
}

// EncodeSample renders values as a JSON array.
func EncodeSample(values ...float64) ([]byte, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("empty sample: %w", errors.ErrWrongArity)
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode sample: %w", err)
	}
	return data, nil
}

func truncate(payload []byte) []byte {
	const max = 64
	if len(payload) <= max {
		return payload
	}
	return payload[:max]
}
