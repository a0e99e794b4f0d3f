// Package permalink serializes an image reference and its text boxes into
// a URL-safe token and back.
//
// The token is base64 over compact UTF-8 JSON, query-escaped, which is the
// same format the web editor writes into its ?m= parameter.
package permalink

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ByLCY/memeforge/layout"
)

// Param is the query parameter carrying the token.
const Param = "m"

// ErrDecodeFailed marks a malformed or foreign token. Callers ignore it and
// keep their current state.
var ErrDecodeFailed = errors.New("permalink decode failed")

// State is the shareable part of a session.
type State struct {
	Img   string           `json:"img"`
	Boxes []layout.TextBox `json:"boxes"`
}

// Encode returns the token for s.
func Encode(s State) (string, error) {
	if s.Boxes == nil {
		s.Boxes = []layout.TextBox{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("编码 permalink 失败: %w", err)
	}
	raw := bytes.TrimRight(buf.Bytes(), "\n")
	return url.QueryEscape(base64.StdEncoding.EncodeToString(raw)), nil
}

// Decode parses a token. It accepts the token with or without the query
// escaping and in either base64 alphabet.
func Decode(token string) (State, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return State{}, fmt.Errorf("%w: empty token", ErrDecodeFailed)
	}
	if strings.Contains(token, "%") {
		unescaped, err := url.QueryUnescape(token)
		if err != nil {
			return State{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
		}
		token = unescaped
	}
	raw, err := decodeBase64(token)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	var s State
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&s); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if s.Img == "" {
		return State{}, fmt.Errorf("%w: missing img", ErrDecodeFailed)
	}
	return s, nil
}

func decodeBase64(s string) ([]byte, error) {
	var firstErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		raw, err := enc.DecodeString(s)
		if err == nil {
			return raw, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// Link appends the token to base as the ?m= parameter, replacing any
// existing query.
func Link(base, token string) string {
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	return base + "?" + Param + "=" + token
}

// FromURL extracts and decodes the token of a shared link. A link without
// the parameter yields ok=false and no error.
func FromURL(link string) (State, bool, error) {
	u, err := url.Parse(link)
	if err != nil {
		return State{}, false, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	token := u.Query().Get(Param)
	if token == "" {
		return State{}, false, nil
	}
	s, err := Decode(token)
	if err != nil {
		return State{}, false, err
	}
	return s, true, nil
}
