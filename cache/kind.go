package cache

import "slices"

// Kind names one cacheable entity type.
type Kind string

const (
	KindGuild   Kind = "guild"
	KindChannel Kind = "channel"
	KindMessage Kind = "message"
	KindMember  Kind = "member"
	KindUser    Kind = "user"
)

var supportedKinds = []Kind{KindGuild, KindChannel, KindMessage, KindMember, KindUser}

// SupportedKinds returns every kind the cache can store.
func SupportedKinds() []Kind {
	return slices.Clone(supportedKinds)
}

// Supported reports whether k is one of the statically known kinds.
func (k Kind) Supported() bool {
	return slices.Contains(supportedKinds, k)
}

func (k Kind) String() string {
	return string(k)
}
