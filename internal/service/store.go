package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shiva/wanderplan/internal/model"
)

// SnapshotRepository is the durable home of the plan collection.
// LoadSnapshot returns (nil, nil) when nothing has been stored yet.
type SnapshotRepository interface {
	LoadSnapshot(ctx context.Context) (*model.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap model.Snapshot) error
}

// StoreConfig tunes the plan store.
type StoreConfig struct {
	// Defaults fill in fields a caller leaves empty when creating a plan.
	Defaults PlanOptions

	// WriteTimeout bounds each background write.
	WriteTimeout time.Duration

	// OnPersistError is called from the writer goroutine when a write fails.
	// Nil means log only.
	OnPersistError func(error)
}

// ─── PlanStore ──────────────────────────────────────────────

// PlanStore holds the plan collection and the active plan pointer.
//
// Every mutation goes through the store and is applied as one
// read-modify-write under a mutex, mirroring a single event handler. After a
// successful mutation the full snapshot is queued for writing. The write is
// fire-and-forget: a failure is reported but never rolls back memory, which
// stays authoritative.
type PlanStore struct {
	engine *ScheduleEngine
	repo   SnapshotRepository
	cfg    StoreConfig
	now    func() time.Time

	mu     sync.Mutex
	state  model.Snapshot
	closed bool

	writes chan model.Snapshot
	done   chan struct{}

	errMu   sync.Mutex
	lastErr error
}

// NewPlanStore creates an empty store and starts its writer.
// Call Load before serving and Close on shutdown.
func NewPlanStore(engine *ScheduleEngine, repo SnapshotRepository, cfg StoreConfig) *PlanStore {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.Defaults.Days <= 0 {
		cfg.Defaults.Days = 3
	}
	s := &PlanStore{
		engine: engine,
		repo:   repo,
		cfg:    cfg,
		now:    time.Now,
		writes: make(chan model.Snapshot, 1),
		done:   make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

// Load reads the persisted snapshot once. With nothing stored (or an empty
// collection) it seeds a single empty plan.
func (s *PlanStore) Load(ctx context.Context) error {
	snap, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("store: load: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap != nil && len(snap.Plans) > 0 {
		s.state = *snap
		if s.indexLocked(s.state.ActivePlanID) < 0 {
			s.state.ActivePlanID = s.state.Plans[0].ID
		}
		log.Printf("[store] Loaded %d plans (active=%s)", len(s.state.Plans), s.state.ActivePlanID)
		return nil
	}

	plan, err := NewPlan(s.cfg.Defaults, s.now())
	if err != nil {
		return fmt.Errorf("store: seed plan: %w", err)
	}
	s.state = model.Snapshot{Plans: []model.Plan{plan}, ActivePlanID: plan.ID}
	log.Printf("[store] No saved plans, seeded %s", plan.ID)
	s.persistLocked()
	return nil
}

// Close stops accepting writes and waits for the pending one to finish.
func (s *PlanStore) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.writes)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("store: close: %w", ctx.Err())
	}
}

// LastPersistError returns the error of the most recent write, nil when it
// succeeded.
func (s *PlanStore) LastPersistError() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErr
}

// ─── Reads ──────────────────────────────────────────────────

// Plans returns every plan.
func (s *PlanStore) Plans() []model.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Plan(nil), s.state.Plans...)
}

// ActivePlan returns the plan the user is editing.
func (s *PlanStore) ActivePlan() model.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Plans[s.activeIndexLocked()]
}

// Plan returns the plan with id.
func (s *PlanStore) Plan(id string) (model.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Plan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	return s.state.Plans[i], nil
}

// BudgetLimit returns the user's budget limit (0 = none).
func (s *PlanStore) BudgetLimit() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.BudgetLimit
}

// Budget summarises the active plan against the budget limit.
func (s *PlanStore) Budget() BudgetSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SummarizeBudget(s.state.Plans[s.activeIndexLocked()], s.state.BudgetLimit)
}

// CustomItems returns the user-created catalog entries.
func (s *PlanStore) CustomItems() []model.TravelItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.TravelItem(nil), s.state.CustomItems...)
}

// CustomItem looks up a user-created catalog entry.
func (s *PlanStore) CustomItem(id string) (model.TravelItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.state.CustomItems {
		if it.ID == id {
			return it.Clone(), true
		}
	}
	return model.TravelItem{}, false
}

// ─── Mutations ──────────────────────────────────────────────

// UpdateActivePlan is the single mutation entry point for schedule edits.
// fn receives the current active plan and returns its replacement. If fn
// fails nothing changes. If fn returns ErrNoChange nothing is written and
// the call succeeds.
func (s *PlanStore) UpdateActivePlan(fn func(model.Plan) (model.Plan, error)) (model.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.activeIndexLocked()
	next, err := fn(s.state.Plans[i])
	if errors.Is(err, ErrNoChange) {
		return s.state.Plans[i], nil
	}
	if err != nil {
		return s.state.Plans[i], err
	}
	s.replacePlanLocked(i, next)
	s.persistLocked()
	return next, nil
}

// SetActivePlan switches the active plan pointer.
func (s *PlanStore) SetActivePlan(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	s.state.ActivePlanID = id
	s.persistLocked()
	return nil
}

// CreatePlan adds an empty plan and makes it active.
func (s *PlanStore) CreatePlan(opts PlanOptions) (model.Plan, error) {
	plan, err := NewPlan(opts.withDefaults(s.cfg.Defaults), s.now())
	if err != nil {
		return model.Plan{}, err
	}
	s.addPlan(plan)
	return plan, nil
}

// CreatePlanFromTemplate adds a plan built from tpl and makes it active.
func (s *PlanStore) CreatePlanFromTemplate(tpl model.Template, opts PlanOptions) (model.Plan, error) {
	opts.Days = len(tpl.Days)
	if opts.Name == "" {
		opts.Name = tpl.Name
	}
	if opts.Region == "" {
		opts.Region = tpl.Region
	}
	plan, err := NewPlan(opts.withDefaults(s.cfg.Defaults), s.now())
	if err != nil {
		return model.Plan{}, err
	}
	plan, err = s.engine.ApplyTemplate(plan, tpl)
	if err != nil {
		return model.Plan{}, err
	}
	s.addPlan(plan)
	return plan, nil
}

func (s *PlanStore) addPlan(plan model.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Plans = append(append([]model.Plan(nil), s.state.Plans...), plan)
	s.state.ActivePlanID = plan.ID
	s.persistLocked()
	log.Printf("[store] Created plan %s (%q, %d days)", plan.ID, plan.Name, plan.TotalDays)
}

// DeletePlan removes a plan. The last remaining plan cannot be deleted.
// Deleting the active plan activates the first remaining one.
func (s *PlanStore) DeletePlan(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	if len(s.state.Plans) <= 1 {
		return ErrLastPlan
	}

	plans := make([]model.Plan, 0, len(s.state.Plans)-1)
	plans = append(plans, s.state.Plans[:i]...)
	plans = append(plans, s.state.Plans[i+1:]...)
	s.state.Plans = plans
	if s.state.ActivePlanID == id {
		s.state.ActivePlanID = plans[0].ID
	}
	s.persistLocked()
	log.Printf("[store] Deleted plan %s", id)
	return nil
}

// ─── Checklist ──────────────────────────────────────────────

// AddChecklistItem appends an unchecked entry to the active plan.
func (s *PlanStore) AddChecklistItem(text string) (model.ChecklistItem, error) {
	item := model.ChecklistItem{ID: uuid.NewString(), Text: strings.TrimSpace(text)}
	_, err := s.UpdateActivePlan(func(p model.Plan) (model.Plan, error) {
		p.Checklist = append(append([]model.ChecklistItem(nil), p.Checklist...), item)
		return p, nil
	})
	return item, err
}

// ToggleChecklistItem flips the checked state of an entry.
func (s *PlanStore) ToggleChecklistItem(id string) (model.ChecklistItem, error) {
	var toggled model.ChecklistItem
	_, err := s.UpdateActivePlan(func(p model.Plan) (model.Plan, error) {
		list := append([]model.ChecklistItem(nil), p.Checklist...)
		for i := range list {
			if list[i].ID == id {
				list[i].Checked = !list[i].Checked
				toggled = list[i]
				p.Checklist = list
				return p, nil
			}
		}
		return p, fmt.Errorf("%w: %s", ErrChecklistItem, id)
	})
	return toggled, err
}

// RemoveChecklistItem deletes an entry.
func (s *PlanStore) RemoveChecklistItem(id string) error {
	_, err := s.UpdateActivePlan(func(p model.Plan) (model.Plan, error) {
		list := make([]model.ChecklistItem, 0, len(p.Checklist))
		for _, c := range p.Checklist {
			if c.ID != id {
				list = append(list, c)
			}
		}
		if len(list) == len(p.Checklist) {
			return p, fmt.Errorf("%w: %s", ErrChecklistItem, id)
		}
		p.Checklist = list
		return p, nil
	})
	return err
}

// ─── Custom catalog, budget, creators ───────────────────────

// AddCustomItem stores a user-created catalog entry and returns it with its
// assigned id.
func (s *PlanStore) AddCustomItem(item model.TravelItem) model.TravelItem {
	item = item.Clone()
	item.ID = "custom-" + uuid.NewString()
	item.Category = model.CategoryCustom
	if item.Duration == "" {
		item.Duration = "1 hour"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CustomItems = append(append([]model.TravelItem(nil), s.state.CustomItems...), item)
	s.persistLocked()
	return item
}

// SetBudgetLimit sets the budget limit. Values ≤ 0 clear it.
func (s *PlanStore) SetBudgetLimit(limit float64) {
	if limit < 0 {
		limit = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.BudgetLimit = limit
	s.persistLocked()
}

// ToggleCreator subscribes to or unsubscribes from a template creator and
// reports whether the user is now subscribed.
func (s *PlanStore) ToggleCreator(creatorID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.state.SubscribedCreators)+1)
	found := false
	for _, id := range s.state.SubscribedCreators {
		if id == creatorID {
			found = true
			continue
		}
		ids = append(ids, id)
	}
	if !found {
		ids = append(ids, creatorID)
	}
	s.state.SubscribedCreators = ids
	s.persistLocked()
	return !found
}

// ─── Backup ─────────────────────────────────────────────────

// Export bundles the full state into a versioned backup document.
func (s *PlanStore) Export() model.Backup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Backup{Version: model.BackupVersion, Snapshot: s.copyLocked()}
}

// Import replaces the full state with a backup. The document is validated as
// a whole first; on any problem nothing is imported and ErrInvalidBackup is
// returned.
func (s *PlanStore) Import(b model.Backup) error {
	if err := validateBackup(b); err != nil {
		return err
	}

	snap := b.Snapshot
	snap.Plans = make([]model.Plan, len(b.Plans))
	for i, p := range b.Plans {
		plan, err := normalizeImportedPlan(p)
		if err != nil {
			return fmt.Errorf("%w: plan %s: %v", ErrInvalidBackup, p.ID, err)
		}
		snap.Plans[i] = plan
	}
	found := false
	for _, p := range snap.Plans {
		if p.ID == snap.ActivePlanID {
			found = true
			break
		}
	}
	if !found {
		snap.ActivePlanID = snap.Plans[0].ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snap
	s.persistLocked()
	log.Printf("[store] Imported backup v%s with %d plans", b.Version, len(snap.Plans))
	return nil
}

func validateBackup(b model.Backup) error {
	if len(b.Plans) == 0 {
		return fmt.Errorf("%w: plans must be a non-empty array", ErrInvalidBackup)
	}
	seen := make(map[string]bool, len(b.Plans))
	for i, p := range b.Plans {
		if p.ID == "" {
			return fmt.Errorf("%w: plan %d has no id", ErrInvalidBackup, i)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate plan id %s", ErrInvalidBackup, p.ID)
		}
		seen[p.ID] = true
		if p.TotalDays < 1 || !p.ConsistentDays() {
			return fmt.Errorf("%w: plan %s has %d days but schedule keys do not match",
				ErrInvalidBackup, p.ID, p.TotalDays)
		}
	}
	return nil
}

// normalizeImportedPlan returns a copy of p with zero-padded start times and
// sorted slots. Items with a bad time or transport, a missing or repeated
// instance id, or a time outside their slot are rejected.
func normalizeImportedPlan(p model.Plan) (model.Plan, error) {
	out := p.Clone()
	seen := make(map[string]bool)
	for _, day := range sortedDayNumbers(out) {
		key := model.DayKey(day)
		ds := out.Schedule[key]
		for _, slot := range model.Slots {
			items := ds.Items(slot)
			for i := range items {
				it := &items[i]
				if it.InstanceID == "" {
					return p, fmt.Errorf("%s %s[%d] has no instance id", key, slot, i)
				}
				if seen[it.InstanceID] {
					return p, fmt.Errorf("duplicate instance id %s", it.InstanceID)
				}
				seen[it.InstanceID] = true
				if err := normalizeItem(it); err != nil {
					return p, fmt.Errorf("%s %s[%d]: %w", key, slot, i, err)
				}
				if slot.Timed() && it.StartTime != "" {
					if want, _ := CanonicalSlot(it.StartTime); want != slot {
						return p, fmt.Errorf("%s %s[%d] starts at %s, which belongs in %s",
							key, slot, i, it.StartTime, want)
					}
				}
			}
			sortSlot(slot, items)
			ds = ds.WithItems(slot, items)
		}
		out.Schedule[key] = ds
	}
	return out, nil
}

// ─── Internals ──────────────────────────────────────────────

func (s *PlanStore) indexLocked(id string) int {
	for i := range s.state.Plans {
		if s.state.Plans[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *PlanStore) activeIndexLocked() int {
	if i := s.indexLocked(s.state.ActivePlanID); i >= 0 {
		return i
	}
	return 0
}

func (s *PlanStore) replacePlanLocked(i int, plan model.Plan) {
	plans := append([]model.Plan(nil), s.state.Plans...)
	plans[i] = plan
	s.state.Plans = plans
}

// copyLocked returns a snapshot that shares no slices with the live state.
// Plans themselves are immutable values, so copying the headers is enough.
func (s *PlanStore) copyLocked() model.Snapshot {
	snap := s.state
	snap.Plans = append([]model.Plan(nil), s.state.Plans...)
	snap.CustomItems = append([]model.TravelItem(nil), s.state.CustomItems...)
	snap.SubscribedCreators = append([]string(nil), s.state.SubscribedCreators...)
	return snap
}

// persistLocked queues the current state for writing. Only the newest
// snapshot matters, so an unwritten older one is replaced.
func (s *PlanStore) persistLocked() {
	if s.closed {
		log.Printf("[store] WARNING: store closed, change not persisted")
		return
	}
	snap := s.copyLocked()
	select {
	case s.writes <- snap:
	default:
		select {
		case <-s.writes:
		default:
		}
		s.writes <- snap
	}
}

func (s *PlanStore) writeLoop() {
	defer close(s.done)
	for snap := range s.writes {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		err := s.repo.SaveSnapshot(ctx, snap)
		cancel()

		s.errMu.Lock()
		s.lastErr = err
		s.errMu.Unlock()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("write timed out after %s: %w", s.cfg.WriteTimeout, err)
			}
			log.Printf("[store] WARNING: persisting %d plans failed: %v", len(snap.Plans), err)
			if s.cfg.OnPersistError != nil {
				s.cfg.OnPersistError(err)
			}
		}
	}
}
