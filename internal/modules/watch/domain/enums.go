//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// FilterKind represents the family a filter belongs to
// ENUM(keyword_include,keyword_exclude,content_type)
type FilterKind string

// ContentType represents the message category a content_type filter checks for
// ENUM(solana_ca,contract_address,image,video,link,text_only)
type ContentType string
