package ports

import (
	"net/url"
	"strconv"
)

// Page is the canonical pagination envelope every list endpoint is
// normalized into.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Paging is embedded by every list filter.
type Paging struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

func (p Paging) apply(v url.Values) {
	setInt(v, "page", p.Page)
	setInt(v, "limit", p.Limit)
}

// TransactionFilter carries the query parameters of the transaction list.
type TransactionFilter struct {
	Paging
	Type      string `query:"type"`
	Category  string `query:"category"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
	Search    string `query:"search"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder"`
}

// Values renders the filter as query-string parameters, omitting zero values.
// The encoding is canonical so it doubles as the cache-key filter segment.
func (f TransactionFilter) Values() url.Values {
	v := url.Values{}
	f.Paging.apply(v)
	setString(v, "type", f.Type)
	setString(v, "category", f.Category)
	setString(v, "startDate", f.StartDate)
	setString(v, "endDate", f.EndDate)
	setString(v, "search", f.Search)
	setString(v, "sortBy", f.SortBy)
	setString(v, "sortOrder", f.SortOrder)
	return v
}

// CashBillFilter carries the query parameters of the cash-bill lists.
type CashBillFilter struct {
	Paging
	Status string `query:"status"`
	Month  int    `query:"month"`
	Year   int    `query:"year"`
	Search string `query:"search"`
}

func (f CashBillFilter) Values() url.Values {
	v := url.Values{}
	f.Paging.apply(v)
	setString(v, "status", f.Status)
	setInt(v, "month", f.Month)
	setInt(v, "year", f.Year)
	setString(v, "search", f.Search)
	return v
}

// FundApplicationFilter carries the query parameters of the fund-application lists.
type FundApplicationFilter struct {
	Paging
	Status   string `query:"status"`
	Category string `query:"category"`
	Search   string `query:"search"`
}

func (f FundApplicationFilter) Values() url.Values {
	v := url.Values{}
	f.Paging.apply(v)
	setString(v, "status", f.Status)
	setString(v, "category", f.Category)
	setString(v, "search", f.Search)
	return v
}

// StudentFilter carries the query parameters of the student list.
type StudentFilter struct {
	Paging
	Search string `query:"search"`
}

func (f StudentFilter) Values() url.Values {
	v := url.Values{}
	f.Paging.apply(v)
	setString(v, "search", f.Search)
	return v
}

// RekapFilter selects the reconciliation period.
type RekapFilter struct {
	Year  int `query:"year"`
	Month int `query:"month"`
}

func (f RekapFilter) Values() url.Values {
	v := url.Values{}
	setInt(v, "year", f.Year)
	setInt(v, "month", f.Month)
	return v
}

func setString(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setInt(v url.Values, key string, val int) {
	if val != 0 {
		v.Set(key, strconv.Itoa(val))
	}
}
