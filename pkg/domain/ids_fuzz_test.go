package domain

import (
	"testing"
)

// FuzzParsePolicyNumber checks parsing never panics and that accepted values
// are already in normalized form.
func FuzzParsePolicyNumber(f *testing.F) {
	f.Add("")
	f.Add("POL001")
	f.Add(" pol002 ")
	f.Add("'; DROP TABLE policy_links;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		p, err := ParsePolicyNumber(input)
		if err != nil {
			if p != "" {
				t.Errorf("got %q with error %v", p, err)
			}
			return
		}
		again, err := ParsePolicyNumber(string(p))
		if err != nil || again != p {
			t.Errorf("normalization not idempotent: %q -> %q (%v)", p, again, err)
		}
	})
}
