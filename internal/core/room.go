package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/avlasov/Boardroom/internal/domain"
)

// Room is one isolated whiteboard session: a membership roster, an admission
// queue, a shape store and at most one recognized manager. All mutating calls
// validate, mutate exactly one store and fan out notifications under the same
// write lock; handle pushes are non-blocking, so fan-out cannot stall the room
// and each participant observes mutations in commit order.
type Room struct {
	name string

	mu      sync.RWMutex
	roster  *roster
	queue   *admissionQueue
	shapes  *shapeStore
	manager Handle

	watchdog *watchdog

	// onDropped is invoked outside the lock with handles whose delivery
	// failed during a fan-out. Set once at wiring time.
	onDropped func(dropped []Handle)
}

func NewRoom(name string) *Room {
	return &Room{
		name:   name,
		roster: newRoster(),
		queue:  newAdmissionQueue(),
		shapes: newShapeStore(),
	}
}

func (r *Room) Name() string { return r.name }

// SetDropHandler wires the delivery-failure policy. The room always invokes
// the handler after releasing its lock.
func (r *Room) SetDropHandler(fn func(dropped []Handle)) {
	r.mu.Lock()
	r.onDropped = fn
	r.mu.Unlock()
}

// SetManager accepts the candidate as the room's recognized manager iff it
// claims the manager role. Last accepted caller wins; there is no handoff.
func (r *Room) SetManager(candidate Handle) bool {
	if candidate.Role() != domain.RoleManager {
		log.Info().Str("module", "core.room").Str("room", r.name).Str("name", candidate.DisplayName()).Msg("manager denied")
		r.tell(candidate, r.name+" room manager denied")
		return false
	}
	r.mu.Lock()
	r.manager = candidate
	r.mu.Unlock()
	log.Info().Str("module", "core.room").Str("room", r.name).Str("name", candidate.DisplayName()).Msg("manager granted")
	r.tell(candidate, r.name+" room manager granted")
	return true
}

// AddClient admits the handle directly, assigning it a fresh id and, when
// name is empty, a synthesized "c<id>" name. Losing a name race notifies the
// caller and returns ErrNameConflict.
func (r *Room) AddClient(name string, h Handle) (string, error) {
	r.mu.Lock()
	final, res, err := r.admitLocked(name, h)
	r.mu.Unlock()
	if err != nil {
		r.tell(h, fmt.Sprintf("name %q already taken in %s", final, r.name))
		return final, err
	}
	r.dispatchDropped(res)
	return final, nil
}

// admitLocked is the single admission path shared by AddClient and
// ApproveRequest, so the join broadcast is identical either way.
func (r *Room) admitLocked(name string, h Handle) (string, FanoutResult, error) {
	final, id, err := r.roster.admit(name, h)
	if err != nil {
		return final, FanoutResult{}, err
	}
	log.Info().Str("module", "core.room").Str("room", r.name).Str("name", final).Int("id", id).Msg("client added")
	res := r.notifyAllLocked(fmt.Sprintf("%s joined %s", final, r.name))
	return final, res, nil
}

// RemoveClient drops the named participant and tells the remaining ones.
// Removing an absent name is observable only through the log and the
// returned ErrNotFound; no participant is notified.
func (r *Room) RemoveClient(name string) error {
	r.mu.Lock()
	if !r.roster.remove(name) {
		r.mu.Unlock()
		log.Debug().Str("module", "core.room").Str("room", r.name).Str("name", name).Msg("remove of absent client")
		return ErrNotFound
	}
	res := r.notifyAllLocked(fmt.Sprintf("%s left %s", name, r.name))
	r.mu.Unlock()
	log.Info().Str("module", "core.room").Str("room", r.name).Str("name", name).Msg("client removed")
	r.dispatchDropped(res)
	return nil
}

// RequestAdmission queues a join request for manager approval. A name that is
// already admitted or already queued is denied.
func (r *Room) RequestAdmission(name string, h Handle) error {
	r.mu.Lock()
	if r.roster.contains(name) || !r.queue.put(name, h) {
		r.mu.Unlock()
		r.tell(h, fmt.Sprintf("name %q exists, request denied", name))
		return ErrNameConflict
	}
	mgr := r.manager
	r.mu.Unlock()
	log.Info().Str("module", "core.room").Str("room", r.name).Str("name", name).Msg("admission requested")
	r.tell(h, "waiting for the room manager to approve")
	if mgr == nil {
		log.Debug().Str("module", "core.room").Str("room", r.name).Msg("no manager to notify of request")
		return nil
	}
	r.tell(mgr, "new join request from "+name)
	return nil
}

// ApproveRequest promotes a pending request into membership through the same
// path as AddClient. Only the recognized manager may call it; a requester that
// lost the race to an identical admitted name is denied and both sides told.
func (r *Room) ApproveRequest(caller Handle, name string) error {
	r.mu.Lock()
	if !r.isManagerLocked(caller) {
		r.mu.Unlock()
		r.tell(caller, "unauthorized")
		return ErrUnauthorized
	}
	h, ok := r.queue.take(name)
	if !ok {
		r.mu.Unlock()
		r.tell(caller, fmt.Sprintf("%s has no pending request", name))
		return ErrNotFound
	}
	final, res, err := r.admitLocked(name, h)
	r.mu.Unlock()
	if err != nil {
		r.tell(h, "request denied")
		r.tell(caller, final+" already exists")
		return err
	}
	r.dispatchDropped(res)
	return nil
}

// ClearRequestList denies every pending request at once. Manager only.
func (r *Room) ClearRequestList(caller Handle) error {
	r.mu.Lock()
	if !r.isManagerLocked(caller) {
		r.mu.Unlock()
		r.tell(caller, "unauthorized")
		return ErrUnauthorized
	}
	drained := r.queue.drain()
	r.mu.Unlock()
	log.Info().Str("module", "core.room").Str("room", r.name).Int("denied", len(drained)).Msg("request list cleared")
	for _, h := range drained {
		r.tell(h, "your request has been denied")
	}
	r.tell(caller, "request list cleared")
	return nil
}

// RemoveRequest denies a single pending request. Manager only.
func (r *Room) RemoveRequest(caller Handle, name string) error {
	r.mu.Lock()
	if !r.isManagerLocked(caller) {
		r.mu.Unlock()
		r.tell(caller, "unauthorized")
		return ErrUnauthorized
	}
	h, ok := r.queue.take(name)
	r.mu.Unlock()
	if !ok {
		r.tell(caller, name+" does not exist")
		return ErrNotFound
	}
	log.Info().Str("module", "core.room").Str("room", r.name).Str("name", name).Msg("request denied")
	r.tell(h, "your request has been denied")
	r.tell(caller, name+" request has been denied")
	return nil
}

// AddShape stores a new item owned by h and pushes it to every admitted
// participant, including the contributor. Always succeeds; the returned item
// is the reference later removals must present.
func (r *Room) AddShape(h Handle, shape, color json.RawMessage) *domain.ShapeItem {
	owner := domain.Identity{Name: h.DisplayName(), ID: h.ID()}
	item := domain.NewShapeItem(owner, shape, color)
	r.mu.Lock()
	r.shapes.add(item)
	res := FanoutResult{}
	for _, member := range r.roster.handles() {
		if err := member.PushShape(item); err != nil {
			r.logDrop(member, err, "push shape")
			res.Dropped = append(res.Dropped, member)
			continue
		}
		if err := member.Notify("new shape added from " + owner.Name); err != nil {
			r.logDrop(member, err, "notify shape")
			res.Dropped = append(res.Dropped, member)
			continue
		}
		res.Delivered++
	}
	r.mu.Unlock()
	log.Debug().Str("module", "core.room").Str("room", r.name).Str("owner", owner.Name).Str("item", item.ID).Msg("shape added")
	r.dispatchDropped(res)
	return item
}

// RemoveItem removes one item by instance and broadcasts the removal.
// An unknown item only notifies the calling handle.
func (r *Room) RemoveItem(h Handle, item *domain.ShapeItem) error {
	r.mu.Lock()
	if !r.shapes.remove(item) {
		r.mu.Unlock()
		r.tell(h, "item remove failed")
		return ErrNotFound
	}
	res := FanoutResult{}
	for _, member := range r.roster.handles() {
		if err := member.Notify(h.DisplayName() + " removed an item"); err != nil {
			r.logDrop(member, err, "notify removal")
			res.Dropped = append(res.Dropped, member)
			continue
		}
		if err := member.PushRemoveShape(item); err != nil {
			r.logDrop(member, err, "push removal")
			res.Dropped = append(res.Dropped, member)
			continue
		}
		res.Delivered++
	}
	r.mu.Unlock()
	log.Debug().Str("module", "core.room").Str("room", r.name).Str("item", item.ID).Msg("shape removed")
	r.dispatchDropped(res)
	return nil
}

// RemoveItemsByClient drops every item owned by h's display name, then
// resyncs the full remaining store to everyone. A resync instead of per-item
// diffs: several items may go at once.
func (r *Room) RemoveItemsByClient(h Handle) int {
	r.mu.Lock()
	removed := r.shapes.removeByOwner(h.DisplayName())
	res := r.resyncAllLocked()
	r.mu.Unlock()
	log.Info().Str("module", "core.room").Str("room", r.name).Str("owner", h.DisplayName()).Int("removed", removed).Msg("shapes removed by owner")
	r.dispatchDropped(res)
	return removed
}

// RemoveAllItems clears the store and resyncs the now-empty set.
func (r *Room) RemoveAllItems() {
	r.mu.Lock()
	n := r.shapes.clear()
	res := r.notifyAllLocked("all items have been cleared")
	res.merge(r.resyncAllLocked())
	r.mu.Unlock()
	log.Info().Str("module", "core.room").Str("room", r.name).Int("cleared", n).Msg("all shapes cleared")
	r.dispatchDropped(res)
}

// --- read accessors ---

func (r *Room) ListSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roster.size()
}

func (r *Room) ClientNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roster.names()
}

func (r *Room) RequestNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.queue.names()
}

func (r *Room) Client(name string) (Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.roster.get(name)
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

func (r *Room) ClientID(name string) (int, error) {
	h, err := r.Client(name)
	if err != nil {
		return 0, err
	}
	return h.ID(), nil
}

// Manager returns the recognized manager, nil until one was accepted.
func (r *Room) Manager() Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.manager
}

// Shapes returns a snapshot of the current store in insertion order.
func (r *Room) Shapes() []*domain.ShapeItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.shapes.snapshot()
}

func (r *Room) ShapeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.shapes.size()
}

// Shape resolves a wire-level item id back to the stored instance.
func (r *Room) Shape(id string) (*domain.ShapeItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.shapes.byID(id)
	if !ok {
		return nil, ErrNotFound
	}
	return item, nil
}

// --- internals ---

// The manager check is identity-by-name, case-insensitive: whoever presents
// the manager's display name passes. Kept as-is for wire compatibility with
// existing clients.
func (r *Room) isManagerLocked(caller Handle) bool {
	return r.manager != nil && strings.EqualFold(r.manager.DisplayName(), caller.DisplayName())
}

func (r *Room) notifyAllLocked(msg string) FanoutResult {
	res := FanoutResult{}
	for _, member := range r.roster.handles() {
		if err := member.Notify(msg); err != nil {
			r.logDrop(member, err, "notify")
			res.Dropped = append(res.Dropped, member)
			continue
		}
		res.Delivered++
	}
	return res
}

func (r *Room) resyncAllLocked() FanoutResult {
	snapshot := r.shapes.snapshot()
	res := FanoutResult{}
	for _, member := range r.roster.handles() {
		if err := member.PushShapeSet(snapshot); err != nil {
			r.logDrop(member, err, "push resync")
			res.Dropped = append(res.Dropped, member)
			continue
		}
		res.Delivered++
	}
	return res
}

// tell delivers a direct notification; failures are logged and swallowed.
func (r *Room) tell(h Handle, msg string) {
	if err := h.Notify(msg); err != nil {
		r.logDrop(h, err, "notify")
	}
}

func (r *Room) logDrop(h Handle, err error, op string) {
	log.Warn().Err(err).Str("module", "core.room").Str("room", r.name).Str("name", h.DisplayName()).Str("op", op).Msg("delivery failed")
}

func (r *Room) dispatchDropped(res FanoutResult) {
	if len(res.Dropped) == 0 {
		return
	}
	r.mu.RLock()
	fn := r.onDropped
	r.mu.RUnlock()
	if fn != nil {
		fn(res.Dropped)
	}
}
