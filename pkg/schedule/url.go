package schedule

// OptionalURL is a URL that may be absent. Two values are equal when both
// are absent, or both are present with the same text; an absent value never
// equals a present one, including a present empty string.
type OptionalURL struct {
	value string
	set   bool
}

// NoURL is the absent URL.
var NoURL = OptionalURL{}

// SomeURL returns a present URL.
func SomeURL(u string) OptionalURL {
	return OptionalURL{value: u, set: true}
}

// Get returns the URL and whether it is present.
func (u OptionalURL) Get() (string, bool) {
	return u.value, u.set
}

// IsSet reports whether the URL is present.
func (u OptionalURL) IsSet() bool {
	return u.set
}

// Equal compares two optional URLs.
func (u OptionalURL) Equal(o OptionalURL) bool {
	if u.set != o.set {
		return false
	}
	return !u.set || u.value == o.value
}

func (u OptionalURL) String() string {
	if !u.set {
		return "<none>"
	}
	return u.value
}
