package propfeed

import (
	"github.com/pixil98/go-mudbuild/internal/props"
)

const subjectPrefix = "props."

// Event announces that a property was written.
type Event struct {
	Table props.TableKey `json:"table"`
	Prop  props.Record   `json:"prop"`
}

// Subject is the NATS subject events for a table are published on.
func Subject(key props.TableKey) string {
	return subjectPrefix + key.Slug()
}

// AllSubjects matches the subject of every table.
const AllSubjects = subjectPrefix + ">"
