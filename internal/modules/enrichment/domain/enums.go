//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// AbsenceReason explains why a lookup produced no quote
// ENUM(not_found,no_active_pairs,insufficient_liquidity)
type AbsenceReason string
