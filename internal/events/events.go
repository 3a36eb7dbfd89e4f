package events

import "time"

// Event types carried over the hub. Front-ends react by reloading the
// affected rows and re-deriving their view state; the engine itself never
// blocks on delivery.
const (
	TypeEntryUpdate = "catalog.entry.update"
	TypeEntryDelete = "catalog.entry.delete"
	TypeTagUpdate   = "catalog.tag.update"
	TypeTagDelete   = "catalog.tag.delete"
)

type Event struct {
	Type     string    `json:"type"`
	EntryIDs []int64   `json:"entry_ids,omitempty"`
	TagID    int64     `json:"tag_id,omitempty"`
	At       time.Time `json:"at"`
}

func EntryUpdate(ids ...int64) Event {
	return Event{Type: TypeEntryUpdate, EntryIDs: ids, At: time.Now().UTC()}
}

func EntryDelete(ids ...int64) Event {
	return Event{Type: TypeEntryDelete, EntryIDs: ids, At: time.Now().UTC()}
}

func TagUpdate(id int64) Event {
	return Event{Type: TypeTagUpdate, TagID: id, At: time.Now().UTC()}
}

func TagDelete(id int64) Event {
	return Event{Type: TypeTagDelete, TagID: id, At: time.Now().UTC()}
}
