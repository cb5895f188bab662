package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stanza-dev/stanza/internal/types"
)

// LoadAuthors reads the site's authors file (blog/authors.yml by default),
// mapping author keys referenced from post front matter to display data.
// A missing file is not an error; posts then simply have unresolvable
// author references, which the checker reports per policy.
func LoadAuthors(path string) (map[string]types.Author, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]types.Author{}, nil
		}
		return nil, fmt.Errorf("reading authors file %s: %w", path, err)
	}

	authors := make(map[string]types.Author)
	if err := yaml.Unmarshal(data, &authors); err != nil {
		return nil, fmt.Errorf("parsing authors file %s: %w", path, err)
	}
	return authors, nil
}
