package migration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
)

// memConn is an in-memory storefront database that understands the queries the
// migration steps issue.
type memConn struct {
	mu        sync.Mutex
	rows      map[string][]map[string]any
	languages map[string][]byte
	failQuery map[string]error
	execs     []string
}

func newMemConn() *memConn {
	return &memConn{
		rows:      map[string][]map[string]any{},
		languages: map[string][]byte{},
		failQuery: map[string]error{},
	}
}

var errDuplicate = errors.New("duplicate key value violates unique constraint")

func (c *memConn) Insert(_ context.Context, table string, row map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.rows[table] {
		if id, ok := row["id"].([]byte); ok && bytes.Equal(id, existing["id"].([]byte)) {
			return fmt.Errorf("insert into %s: %w", table, errDuplicate)
		}
		switch table {
		case "mail_template_type":
			if row["technical_name"] == existing["technical_name"] {
				return fmt.Errorf("insert into %s: %w", table, errDuplicate)
			}
		case "mail_template_type_translation":
			if sameKey(row, existing, "mail_template_type_id", "language_id") {
				return fmt.Errorf("insert into %s: %w", table, errDuplicate)
			}
		case "mail_template_translation":
			if sameKey(row, existing, "mail_template_id", "language_id") {
				return fmt.Errorf("insert into %s: %w", table, errDuplicate)
			}
		}
	}
	c.rows[table] = append(c.rows[table], row)
	return nil
}

func sameKey(a, b map[string]any, cols ...string) bool {
	for _, col := range cols {
		if !bytes.Equal(a[col].([]byte), b[col].([]byte)) {
			return false
		}
	}
	return true
}

func (c *memConn) FetchColumn(_ context.Context, query string, args ...any) (any, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.failQuery[query]; err != nil {
		return nil, false, err
	}
	switch query {
	case queryTemplateTypeID:
		return c.first("mail_template_type", func(r map[string]any) bool {
			return r["technical_name"] == args[0]
		})
	case queryTemplateID:
		return c.first("mail_template", func(r map[string]any) bool {
			return bytes.Equal(r["mail_template_type_id"].([]byte), args[0].([]byte))
		})
	case queryLanguageID:
		id, ok := c.languages[args[0].(string)]
		if !ok {
			return nil, false, nil
		}
		return id, true, nil
	case queryEventActionID:
		return c.first("event_action", func(r map[string]any) bool {
			return r["event_name"] == args[0] && r["action_name"] == args[1]
		})
	default:
		return nil, false, fmt.Errorf("unexpected query %q", query)
	}
}

func (c *memConn) first(table string, match func(map[string]any) bool) (any, bool, error) {
	for _, r := range c.rows[table] {
		if match(r) {
			return r["id"], true, nil
		}
	}
	return nil, false, nil
}

func (c *memConn) Exec(_ context.Context, query string, _ ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failQuery[query]; err != nil {
		return err
	}
	c.execs = append(c.execs, query)
	return nil
}

func (c *memConn) count(table string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows[table])
}

func (c *memConn) table(table string) []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows[table]
}

func (c *memConn) deleteAll(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rows, table)
}
