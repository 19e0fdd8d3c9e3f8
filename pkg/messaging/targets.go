package messaging

// Recipients names the delivery targets a routing category maps to for the
// clients that address individual accounts and groups (Signal, WhatsApp).
type Recipients struct {
	Individuals []string `json:"individuals,omitempty" yaml:"individuals"`
	Groups      []string `json:"groups,omitempty" yaml:"groups"`
}

// Merged flattens the entry into one target list, individuals first.
func (r Recipients) Merged() []string {
	if len(r.Individuals) == 0 && len(r.Groups) == 0 {
		return nil
	}
	merged := make([]string, 0, len(r.Individuals)+len(r.Groups))
	merged = append(merged, r.Individuals...)
	merged = append(merged, r.Groups...)
	return merged
}

// Empty reports whether the entry names no targets at all.
func (r Recipients) Empty() bool {
	return len(r.Individuals) == 0 && len(r.Groups) == 0
}

// ValidPhone reports whether s is a phone number in international format:
// a leading + followed by at least seven digits and nothing else.
func ValidPhone(s string) bool {
	if len(s) < 8 || s[0] != '+' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
