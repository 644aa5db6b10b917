package content

import "strconv"

// IDOrSlug is a path parameter resolved to either a numeric id or a slug.
type IDOrSlug struct {
	ID   uint
	Slug string
	IsID bool
}

// ParseIDOrSlug treats the whole parameter as an id when it is a base-10
// unsigned integer and as a slug otherwise. "5-morning-rituals" is a slug.
func ParseIDOrSlug(param string) IDOrSlug {
	if id, err := strconv.ParseUint(param, 10, 64); err == nil {
		return IDOrSlug{ID: uint(id), IsID: true}
	}
	return IDOrSlug{Slug: param}
}
