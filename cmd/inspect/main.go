// Command inspect prints the records stored under a key prefix as a table.
// It opens the database read-only, so it can run next to a live server.
package main

import (
	"chat-desk/repositories"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const maxDetailLength = 80

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "chat:", "Prefix to scan (admin:, project:, participant:, chat:, msg:)")
	limit := flag.Int("limit", 200, "Maximum number of rows")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	rows, err := scan(db, *prefix, *limit)
	if err != nil {
		log.Fatal(err)
	}
	render(os.Stdout, rows)
}

type row struct {
	key       string
	kind      string
	timestamp string
	entityID  string
	detail    string
}

// scan reads records under prefix. Secondary indexes are skipped since
// they hold ids, not records.
func scan(db *badger.DB, prefix string, limit int) ([]row, error) {
	var rows []row
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes) && len(rows) < limit; it.Next() {
			item := it.Item()
			key := string(item.Key())
			if strings.HasPrefix(key, "idx:") {
				continue
			}
			err := item.Value(func(v []byte) error {
				record, err := repositories.Decode(v)
				if err != nil {
					fmt.Printf("Error decoding key %s: %v\n", key, err)
					return nil
				}
				rows = append(rows, toRow(key, record))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

func toRow(key string, record map[string]any) row {
	kind, _, _ := strings.Cut(key, ":")
	r := row{key: key, kind: strings.ToUpper(kind)}
	if id, ok := record["id"].(string); ok {
		r.entityID = shortID(id)
	}
	if nanos, ok := asInt64(record["created_at"]); ok && nanos > 0 {
		r.timestamp = time.Unix(0, nanos).UTC().Format(time.DateTime)
	}
	if t, ok := record["type"].(string); ok && t != "" {
		r.kind = t
	}

	fields := lo.Without(lo.Keys(record), "id", "created_at", "password_hash")
	sort.Strings(fields)
	r.detail = truncate(strings.Join(lo.Map(fields, func(f string, _ int) string {
		return fmt.Sprintf("%s=%v", f, record[f])
	}), " "), maxDetailLength)
	return r
}

func render(w io.Writer, rows []row) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Type", "Created", "Entity ID", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, r := range rows {
		table.Append([]string{r.key, r.kind, r.timestamp, r.entityID, r.detail})
	}
	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// asInt64 accepts both integer shapes the CBOR decoder produces.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}
