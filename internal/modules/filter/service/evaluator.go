package service

import (
	"strings"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/address"
	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/domain"
	"github.com/samber/lo"
)

// Decision is the outcome of running a filter chain against one event.
type Decision struct {
	Forward bool
	// Identifier is the token address found by a solana_ca filter, if any.
	Identifier string
}

type chain struct {
	include      []string
	exclude      []string
	contentTypes []domain.ContentType
}

func group(filters []domain.Filter) chain {
	byKind := lo.GroupBy(filters, func(f domain.Filter) domain.FilterKind {
		return f.Kind()
	})

	return chain{
		include: lo.Map(byKind[domain.FilterKindKeywordInclude], func(f domain.Filter, _ int) string { return f.Keyword() }),
		exclude: lo.Map(byKind[domain.FilterKindKeywordExclude], func(f domain.Filter, _ int) string { return f.Keyword() }),
		contentTypes: lo.Uniq(lo.Map(byKind[domain.FilterKindContentType], func(f domain.Filter, _ int) domain.ContentType {
			return f.ContentType()
		})),
	}
}

// Evaluate decides whether event passes filters. The order is fixed:
//
//  1. no filters forwards;
//  2. any exclude keyword drops;
//  3. with no include keywords and no content types, forwards;
//  4. any include keyword forwards without looking at content types;
//  5. any matching content type forwards (solana_ca also extracts the address);
//  6. otherwise drops.
//
// Keywords match as case-insensitive substrings of the text or caption.
func Evaluate(event *domain.Event, filters []domain.Filter) Decision {
	if len(filters) == 0 {
		return Decision{Forward: true}
	}

	c := group(filters)
	body := strings.ToLower(event.Body())

	if containsAny(body, c.exclude) {
		return Decision{}
	}

	if len(c.include) == 0 && len(c.contentTypes) == 0 {
		return Decision{Forward: true}
	}

	if containsAny(body, c.include) {
		return Decision{Forward: true}
	}

	// solana_ca goes first so its address is extracted even when a cheaper
	// presence check would also have matched.
	if lo.Contains(c.contentTypes, domain.ContentTypeSolanaCa) {
		if identifier, ok := address.FirstContentAddress(event.Body()); ok {
			return Decision{Forward: true, Identifier: identifier}
		}
	}

	matched := lo.SomeBy(c.contentTypes, func(ct domain.ContentType) bool {
		return matchesContentType(event, ct)
	})
	return Decision{Forward: matched}
}

func matchesContentType(event *domain.Event, contentType domain.ContentType) bool {
	switch contentType {
	case domain.ContentTypeContractAddress:
		return address.HasContractAddress(event.Body())
	case domain.ContentTypeImage:
		return event.HasPhoto
	case domain.ContentTypeVideo:
		return event.HasVideo
	case domain.ContentTypeLink:
		return event.HasLinkEntity
	case domain.ContentTypeTextOnly:
		return event.IsTextOnly()
	default:
		// solana_ca is handled before the presence checks
		return false
	}
}

func containsAny(lowerBody string, keywords []string) bool {
	return lo.SomeBy(keywords, func(keyword string) bool {
		return strings.Contains(lowerBody, strings.ToLower(keyword))
	})
}
