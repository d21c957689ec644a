package resolver

// ListRequest describes a collection read.
type ListRequest struct {
	Resource   string
	Filter     string // raw filter expression, empty for none
	Offset     uint64
	Limit      uint64 // 0 selects the default page size
	TotalCount bool
}

type ListResult struct {
	Items []map[string]any
	Total *int64 // set only when TotalCount was requested
}

// Options tunes paging and caching. Zero values keep the defaults.
type Options struct {
	DefaultLimit             uint64
	MaxLimit                 uint64
	CountCacheTTLSec         int64
	PredicateCacheMaxEntries int64
}
