package service

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/galacash/gateway/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// itemKeys lists, in lookup order, the members under which the backend nests
// list items. The shape differs per endpoint.
var itemKeys = []string{"data", "bills", "applications", "transactions", "students"}

// NormalizePage turns any list payload the backend produces into the
// canonical Page. It never fails: unknown shapes degrade to an empty page
// with default pagination, and items that do not decode into T are skipped.
func NormalizePage[T any](raw json.RawMessage) ports.Page[T] {
	items, meta := splitPayload(raw, 0)
	data := decodeItems[T](items)

	page := meta.int("page", "currentPage")
	if page < 1 {
		page = defaultPage
	}
	limit := meta.int("limit", "itemsPerPage", "perPage", "pageSize")
	if limit < 1 {
		limit = defaultLimit
	}
	total := int64(meta.int("total", "totalItems", "count"))
	if !meta.has("total", "totalItems", "count") || total < 0 {
		total = int64(len(data))
	}
	totalPages := meta.int("totalPages", "pages")
	if !meta.has("totalPages", "pages") {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	if totalPages < 1 {
		totalPages = 1
	}

	return ports.Page[T]{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// pageMeta holds pagination members, nested ones taking precedence over
// flattened ones.
type pageMeta struct {
	nested map[string]json.RawMessage
	flat   map[string]json.RawMessage
}

func (m pageMeta) lookup(keys ...string) (json.RawMessage, bool) {
	for _, src := range []map[string]json.RawMessage{m.nested, m.flat} {
		for _, k := range keys {
			if v, ok := src[k]; ok && !isNull(v) {
				return v, true
			}
		}
	}
	return nil, false
}

func (m pageMeta) has(keys ...string) bool {
	v, ok := m.lookup(keys...)
	if !ok {
		return false
	}
	_, parsed := parseInt(v)
	return parsed
}

func (m pageMeta) int(keys ...string) int {
	v, ok := m.lookup(keys...)
	if !ok {
		return 0
	}
	n, _ := parseInt(v)
	return n
}

func splitPayload(raw json.RawMessage, depth int) (json.RawMessage, pageMeta) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return nil, pageMeta{}
	}
	switch raw[0] {
	case '[':
		return raw, pageMeta{}
	case '{':
	default:
		return nil, pageMeta{}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, pageMeta{}
	}
	meta := pageMeta{flat: obj}
	if p, ok := obj["pagination"]; ok {
		var nested map[string]json.RawMessage
		if json.Unmarshal(p, &nested) == nil {
			meta.nested = nested
		}
	}

	for _, k := range itemKeys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '[' {
			return v, meta
		}
		// {data: {bills: [...], pagination: {...}}}
		if k == "data" && len(v) > 0 && v[0] == '{' && depth == 0 {
			items, inner := splitPayload(v, depth+1)
			if items != nil {
				if inner.nested == nil {
					inner.nested = meta.nested
				}
				return items, inner
			}
		}
	}
	return nil, meta
}

func decodeItems[T any](raw json.RawMessage) []T {
	out := []T{}
	if raw == nil {
		return out
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return out
	}
	for _, e := range elems {
		var item T
		if err := json.Unmarshal(e, &item); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out
}

func parseInt(v json.RawMessage) (int, bool) {
	s := strings.Trim(strings.TrimSpace(string(v)), `"`)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
