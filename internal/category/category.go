package category

import (
	"encoding/json"
	"fmt"
)

// Category is one bucket in a closed classification of file usage purpose.
// The declaration order is the canonical sort order for output.
type Category uint8

const (
	Documents Category = iota
	Images
	Audio
	Video
	Archives
	Code
	Binaries
	Packages
	System
	Other
)

var names = [...]string{
	Documents: "documents",
	Images:    "images",
	Audio:     "audio",
	Video:     "video",
	Archives:  "archives",
	Code:      "code",
	Binaries:  "binaries",
	Packages:  "packages",
	System:    "system",
	Other:     "other",
}

// All returns every category in canonical order.
func All() []Category {
	out := make([]Category, len(names))
	for i := range names {
		out[i] = Category(i)
	}
	return out
}

func (c Category) String() string {
	if int(c) < len(names) {
		return names[c]
	}
	return "other"
}

// Parse returns the category with the given canonical name.
func Parse(s string) (Category, error) {
	for i, name := range names {
		if s == name {
			return Category(i), nil
		}
	}
	return Other, fmt.Errorf("unknown category %q", s)
}

// MarshalJSON serializes the category as its canonical lowercase name.
// This string form is a compatibility surface; renaming a variant is a
// breaking change for JSON consumers.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON parses the canonical lowercase name.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
