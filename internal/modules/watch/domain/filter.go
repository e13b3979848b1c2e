package domain

import (
	"encoding/json"
	"strings"

	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
	"github.com/samber/oops"
)

// Filter is one rule in a subscription's filter chain. It is either a keyword
// rule (include or exclude) or a content-type rule; the constructors are the
// only way to build one, so a keyword filter never carries a content type and
// vice versa.
type Filter struct {
	ID             int64
	SubscriptionID int64

	kind        FilterKind
	keyword     string
	contentType ContentType
}

// NewKeywordInclude builds a filter that forwards messages containing keyword.
func NewKeywordInclude(keyword string) (Filter, error) {
	return newKeywordFilter(FilterKindKeywordInclude, keyword)
}

// NewKeywordExclude builds a filter that drops messages containing keyword.
func NewKeywordExclude(keyword string) (Filter, error) {
	return newKeywordFilter(FilterKindKeywordExclude, keyword)
}

// NewContentTypeFilter builds a filter that forwards messages of the given category.
func NewContentTypeFilter(contentType ContentType) (Filter, error) {
	if !contentType.IsValid() {
		return Filter{}, oops.With("content_type", contentType).Wrap(errors.ErrInvalidFilter)
	}
	parsed, _ := ParseContentType(string(contentType))
	return Filter{kind: FilterKindContentType, contentType: parsed}, nil
}

// ParseFilter builds a filter from its stored (kind, value) representation.
func ParseFilter(kind string, value string) (Filter, error) {
	filterKind, err := ParseFilterKind(kind)
	if err != nil {
		return Filter{}, oops.With("kind", kind).Wrapf(errors.ErrInvalidFilter, "%s", err.Error())
	}

	switch filterKind {
	case FilterKindKeywordInclude, FilterKindKeywordExclude:
		return newKeywordFilter(filterKind, value)
	default:
		return NewContentTypeFilter(ContentType(value))
	}
}

func newKeywordFilter(kind FilterKind, keyword string) (Filter, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return Filter{}, oops.With("kind", kind).Wrapf(errors.ErrInvalidFilter, "keyword must not be empty")
	}
	return Filter{kind: kind, keyword: keyword}, nil
}

func (f Filter) Kind() FilterKind {
	return f.kind
}

// Keyword is empty for content-type filters.
func (f Filter) Keyword() string {
	return f.keyword
}

// ContentType is empty for keyword filters.
func (f Filter) ContentType() ContentType {
	return f.contentType
}

// Value returns the stored representation of the filter's payload.
func (f Filter) Value() string {
	if f.kind == FilterKindContentType {
		return string(f.contentType)
	}
	return f.keyword
}

// WithIDs returns a copy of f bound to a stored row.
func (f Filter) WithIDs(id int64, subscriptionID int64) Filter {
	f.ID = id
	f.SubscriptionID = subscriptionID
	return f
}

type filterJSON struct {
	ID             int64  `json:"id"`
	SubscriptionID int64  `json:"subscription_id"`
	Kind           string `json:"kind"`
	Value          string `json:"value"`
}

func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(filterJSON{
		ID:             f.ID,
		SubscriptionID: f.SubscriptionID,
		Kind:           string(f.kind),
		Value:          f.Value(),
	})
}

func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw filterJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseFilter(raw.Kind, raw.Value)
	if err != nil {
		return err
	}
	*f = parsed.WithIDs(raw.ID, raw.SubscriptionID)
	return nil
}
