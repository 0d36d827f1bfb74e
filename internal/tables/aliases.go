package tables

import (
	"fmt"
	"os"
	"strings"
)

var aliasHeader = []string{"Username", "Alias"}

// AliasBook maps chat display names to tracking aliases. It is backed by
// aliases.csv and every Define is written through immediately so a later
// submission in the same run sees it.
type AliasBook struct {
	path    string
	entries map[string]string
	order   []string
}

// OpenAliases loads path, creating it with only the header if missing.
func OpenAliases(path string) (*AliasBook, error) {
	b := &AliasBook{path: path, entries: map[string]string{}}
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		if err := writeRecords(path, [][]string{aliasHeader}); err != nil {
			return nil, err
		}
		return b, nil
	}
	for _, rec := range records[1:] {
		if len(rec) < 2 {
			continue
		}
		user, alias := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if user == "" {
			continue
		}
		if _, dup := b.entries[user]; !dup {
			b.order = append(b.order, user)
		}
		b.entries[user] = alias
	}
	return b, nil
}

// Lookup returns the alias recorded for author.
func (b *AliasBook) Lookup(author string) (string, bool) {
	alias, ok := b.entries[strings.TrimSpace(author)]
	return alias, ok
}

// Define records a new mapping and appends it to the file.
func (b *AliasBook) Define(author, alias string) error {
	author = strings.TrimSpace(author)
	if _, dup := b.entries[author]; !dup {
		b.order = append(b.order, author)
	}
	b.entries[author] = alias

	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", b.path, err)
	}
	defer f.Close()
	if err := terminateLastLine(f); err != nil {
		return fmt.Errorf("appending to %s: %w", b.path, err)
	}
	if err := appendRecord(f, []string{author, alias}); err != nil {
		return fmt.Errorf("appending to %s: %w", b.path, err)
	}
	return nil
}

// Len returns the number of known authors.
func (b *AliasBook) Len() int { return len(b.order) }
