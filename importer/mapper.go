package importer

import (
	"fmt"

	"togglepace/toggl"
)

// Mapper turns one file row into a time entry. ok is false for rows that
// carry no entry.
type Mapper interface {
	Name() string
	Map(record Record) (entry toggl.TimeEntry, project string, ok bool, err error)
}

func SupportedMapperNames() []string {
	return []string{"toggl", "generic"}
}

func MapperByName(name string) (Mapper, error) {
	switch normalizeHeader(name) {
	case "", "toggl":
		return &TogglMapper{}, nil
	case "generic":
		return &GenericMapper{}, nil
	default:
		return nil, fmt.Errorf("unsupported mapper: %s", name)
	}
}
