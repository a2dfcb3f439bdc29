package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RawSQLClient runs queries through the recorder's /raw_sql HTTP endpoint.
// The endpoint takes no bind parameters, so arguments are inlined as SQL literals.
type RawSQLClient struct {
	baseURL string
	client  *http.Client
}

func NewRawSQLClient(baseURL string, httpClient *http.Client) *RawSQLClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &RawSQLClient{baseURL: strings.TrimRight(baseURL, "/"), client: httpClient}
}

func (c *RawSQLClient) selectRows(ctx context.Context, dest any, q string, args ...any) error {
	stmt, err := inlineArgs(q, args)
	if err != nil {
		return err
	}
	body, err := json.Marshal(map[string]string{"query": stmt})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/raw_sql", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.CopyN(io.Discard, resp.Body, 512)
		return fmt.Errorf("raw_sql: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("raw_sql: decode: %w", err)
	}
	return nil
}

// inlineArgs replaces each ? placeholder outside string literals with the matching argument.
func inlineArgs(q string, args []any) (string, error) {
	var b strings.Builder
	b.Grow(len(q))
	inString := false
	next := 0
	for _, r := range q {
		switch {
		case r == '\'':
			inString = !inString
			b.WriteRune(r)
		case r == '?' && !inString:
			if next >= len(args) {
				return "", fmt.Errorf("inlineArgs: not enough arguments for query")
			}
			lit, err := sqlLiteral(args[next])
			if err != nil {
				return "", err
			}
			b.WriteString(lit)
			next++
		default:
			b.WriteRune(r)
		}
	}
	if next != len(args) {
		return "", fmt.Errorf("inlineArgs: %d arguments for %d placeholders", len(args), next)
	}
	return b.String(), nil
}

func sqlLiteral(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'", nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case time.Time:
		return "'" + x.UTC().Format(sqlTimeLayout) + "'", nil
	}
	return "", fmt.Errorf("sqlLiteral: unsupported argument type %T", v)
}
