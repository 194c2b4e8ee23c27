package registry

import "fmt"

type locateKind int

const (
	locateNone locateKind = iota
	locateID
	locateRevision
	locateIndex
	locateCurrent
)

// Locator selects the entry a removal applies to.
type Locator struct {
	kind  locateKind
	id    uint32
	rev   uint64
	index int
}

// ByID locates the entry with the given notification id.
func ByID(id uint32) Locator {
	return Locator{kind: locateID, id: id}
}

// ByRevision locates the entry with the given id only while it still holds
// the submission that produced rev. A later replacement does not match.
func ByRevision(id uint32, rev uint64) Locator {
	return Locator{kind: locateRevision, id: id, rev: rev}
}

// At locates the entry at a display position.
func At(index int) Locator {
	return Locator{kind: locateIndex, index: index}
}

// Selected locates the entry under the cursor.
func Selected() Locator {
	return Locator{kind: locateCurrent}
}

// String returns a short description for logging.
func (l Locator) String() string {
	switch l.kind {
	case locateID:
		return fmt.Sprintf("id:%d", l.id)
	case locateRevision:
		return fmt.Sprintf("id:%d@%d", l.id, l.rev)
	case locateIndex:
		return fmt.Sprintf("index:%d", l.index)
	case locateCurrent:
		return "selected"
	default:
		return "none"
	}
}
