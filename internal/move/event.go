// Package move turns a completed drag into the single "dropped" event the
// server authority receives.
package move

import "encoding/json"

// EventName is the message name the server authority listens for.
const EventName = "dropped"

// Event is the normalized description of one accepted drag. A nil list is
// left off the wire; an empty list is sent as [].
type Event struct {
	DraggedID string   `json:"draggedId"`
	FromID    string   `json:"draggedFromId"`
	ToID      string   `json:"draggedToId"`
	FromList  []string `json:"draggedFromList,omitempty"`
	ToList    []string `json:"draggedToList,omitempty"`
}

type wireEvent struct {
	DraggedID string    `json:"draggedId"`
	FromID    string    `json:"draggedFromId"`
	ToID      string    `json:"draggedToId"`
	FromList  *[]string `json:"draggedFromList,omitempty"`
	ToList    *[]string `json:"draggedToList,omitempty"`
}

// MarshalJSON keeps empty-but-present lists on the wire.
func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{DraggedID: e.DraggedID, FromID: e.FromID, ToID: e.ToID}
	if e.FromList != nil {
		w.FromList = &e.FromList
	}
	if e.ToList != nil {
		w.ToList = &e.ToList
	}
	return json.Marshal(w)
}
