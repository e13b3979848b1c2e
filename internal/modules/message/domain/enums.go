//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// MediaType represents the media attached to a forwarded message
// ENUM(none,photo,video)
type MediaType string
