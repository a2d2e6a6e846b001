package core

import (
	"sort"
	"strconv"
)

// roster is the membership registry: display name -> handle. It owns the id
// counter so that admission and id assignment happen in one indivisible step
// under the room's lock. Ids are allocated only on successful admission.
type roster struct {
	byName map[string]Handle
	nextID int
}

func newRoster() *roster {
	return &roster{byName: make(map[string]Handle)}
}

// admit inserts h under name, synthesizing "c<id>" when name is empty.
// Returns the final name and the assigned id, or ErrNameConflict without
// consuming an id.
func (r *roster) admit(name string, h Handle) (string, int, error) {
	id := r.nextID
	synthesized := name == ""
	if synthesized {
		name = "c" + strconv.Itoa(id)
	}
	if _, ok := r.byName[name]; ok {
		return name, 0, ErrNameConflict
	}
	r.nextID++
	h.SetID(id)
	if synthesized {
		h.SetDisplayName(name)
	}
	r.byName[name] = h
	return name, id, nil
}

func (r *roster) remove(name string) bool {
	if _, ok := r.byName[name]; !ok {
		return false
	}
	delete(r.byName, name)
	return true
}

func (r *roster) get(name string) (Handle, bool) {
	h, ok := r.byName[name]
	return h, ok
}

func (r *roster) contains(name string) bool {
	_, ok := r.byName[name]
	return ok
}

func (r *roster) size() int { return len(r.byName) }

func (r *roster) names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *roster) handles() []Handle {
	out := make([]Handle, 0, len(r.byName))
	for _, name := range r.names() {
		out = append(out, r.byName[name])
	}
	return out
}
