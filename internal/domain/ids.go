package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Sequence names the identifier namespace of one entity table.
type Sequence struct {
	Table  string
	Column string
	Prefix string
	Width  int
}

var (
	EquipmentSeq = Sequence{Table: "equipement", Column: "equipe_id", Prefix: "E", Width: 8}
	ItemSeq      = Sequence{Table: "item", Column: "item_id", Prefix: "I", Width: 8}
	UserSeq      = Sequence{Table: "user_nt", Column: "user_id", Prefix: "U", Width: 8}
	NoteSeq      = Sequence{Table: "note", Column: "note_id", Prefix: "N", Width: 8}
	NoteImageSeq = Sequence{Table: "note_images", Column: "image_id", Prefix: "I", Width: 8}
	HistorySeq   = Sequence{Table: "item_history", Column: "statusid", Prefix: "S", Width: 8}
	NodeSeq      = Sequence{Table: "node", Column: "node_id", Prefix: "N", Width: 8}
	RoomSeq      = Sequence{Table: "room", Column: "room_id", Prefix: "R", Width: 8}
	ObjectSeq    = Sequence{Table: "object", Column: "object_id", Prefix: "OBJ", Width: 5}
)

// Sequences lists every known namespace. Stores only allocate from these.
var Sequences = []Sequence{EquipmentSeq, ItemSeq, UserSeq, NoteSeq, NoteImageSeq, HistorySeq, NodeSeq, RoomSeq, ObjectSeq}

func (s Sequence) Format(n uint64) string {
	return s.Prefix + fmt.Sprintf("%0*d", s.Width, n)
}

// Parse returns the numeric suffix of id, or false if id does not belong to s.
func (s Sequence) Parse(id string) (uint64, bool) {
	if !strings.HasPrefix(id, s.Prefix) {
		return 0, false
	}
	n, err := strconv.ParseUint(id[len(s.Prefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s Sequence) Known() bool {
	for _, k := range Sequences {
		if k == s {
			return true
		}
	}
	return false
}
