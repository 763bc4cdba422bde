package segment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cutelabs/ragd/internal/domain"
)

// validate checks a raw provider reply against the segmentation contract:
// a bare JSON array of objects, each carrying at least string keys "id" and
// "content". Extra keys are tolerated; surrounding prose, code fences, and
// trailing data all fail. Pure function, no I/O.
func validate(raw string) ([]domain.Segment, error) {
	dec := json.NewDecoder(strings.NewReader(raw))

	var items []map[string]json.RawMessage
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("not a JSON array of objects: %w", err)
	}
	if dec.More() {
		return nil, errors.New("trailing data after the JSON array")
	}
	if items == nil {
		return nil, errors.New("expected a JSON array, got null")
	}
	if len(items) == 0 {
		return nil, errors.New("empty segment array")
	}

	segments := make([]domain.Segment, 0, len(items))
	for i, item := range items {
		seg, err := parseSegment(item)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(item map[string]json.RawMessage) (domain.Segment, error) {
	var seg domain.Segment

	idRaw, ok := item["id"]
	if !ok {
		return domain.Segment{}, errors.New(`missing key "id"`)
	}
	if err := json.Unmarshal(idRaw, &seg.ID); err != nil {
		return domain.Segment{}, fmt.Errorf(`key "id" is not a string: %w`, err)
	}

	contentRaw, ok := item["content"]
	if !ok {
		return domain.Segment{}, errors.New(`missing key "content"`)
	}
	if err := json.Unmarshal(contentRaw, &seg.Content); err != nil {
		return domain.Segment{}, fmt.Errorf(`key "content" is not a string: %w`, err)
	}

	return seg, nil
}
