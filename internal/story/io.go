package story

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hack-pad/hackpadfs"
)

// Decode parses a story document. Both the {"story": {...}} envelope and a
// bare story object are accepted. The result is validated.
func Decode(data []byte) (*Story, error) {
	var probe struct {
		Story json.RawMessage `json:"story"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStory, err)
	}

	body := data
	if len(probe.Story) > 0 && string(probe.Story) != "null" {
		body = probe.Story
	}

	s := &Story{}
	if err := json.Unmarshal(body, s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStory, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Encode writes s inside the {"story": ...} envelope.
func Encode(s *Story) ([]byte, error) {
	data, err := json.Marshal(Document{Story: *s})
	if err != nil {
		return nil, fmt.Errorf("failed to encode story: %w", err)
	}
	return data, nil
}

// Load reads and decodes the story at path in fsys.
func Load(fsys hackpadfs.FS, path string) (*Story, error) {
	data, err := hackpadfs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story %s: %w", path, err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("story %s: %w", path, err)
	}
	return s, nil
}

// Save encodes s and writes it to path in fsys, replacing any existing file.
func Save(fsys hackpadfs.FS, path string, s *Story) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := hackpadfs.WriteFullFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write story %s: %w", path, err)
	}
	return nil
}
