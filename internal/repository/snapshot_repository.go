// Package repository provides durable storage for the travel planner.
//
// Plan snapshots can live in PostgreSQL (one JSONB row per plan, written in
// a single transaction) or in Redis (the plans and active-plan keys written
// in one MULTI/EXEC). Both satisfy service.SnapshotRepository.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shiva/wanderplan/internal/model"
)

// extras is the non-plan part of a snapshot, stored as one document.
type extras struct {
	CustomItems        []model.TravelItem `json:"customItems"`
	BudgetLimit        float64            `json:"budgetLimit"`
	SubscribedCreators []string           `json:"subscribedCreators"`
}

func extrasOf(snap model.Snapshot) extras {
	return extras{
		CustomItems:        snap.CustomItems,
		BudgetLimit:        snap.BudgetLimit,
		SubscribedCreators: snap.SubscribedCreators,
	}
}

func (e extras) apply(snap *model.Snapshot) {
	snap.CustomItems = e.CustomItems
	snap.BudgetLimit = e.BudgetLimit
	snap.SubscribedCreators = e.SubscribedCreators
}

// ─── PostgreSQL ─────────────────────────────────────────────

const extrasStateKey = "planner-extras"

// PostgresSnapshotRepository stores plans in travel_plans and the active
// plan pointer plus extras in planner_state.
type PostgresSnapshotRepository struct {
	pool      *pgxpool.Pool
	activeKey string
}

// NewPostgresSnapshotRepository creates a Postgres-backed snapshot store.
// activeKey is the planner_state key holding the active plan id.
func NewPostgresSnapshotRepository(pool *pgxpool.Pool, activeKey string) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{pool: pool, activeKey: activeKey}
}

// LoadSnapshot reads every plan in stored order. It returns (nil, nil) when
// no readable plan has been saved yet.
//
// Rows that no longer decode as a plan are moved to travel_plans_unreadable
// so the next save does not delete them.
func (r *PostgresSnapshotRepository) LoadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, body FROM travel_plans ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load plans: %w", err)
	}
	defer rows.Close()

	snap := &model.Snapshot{}
	var unreadable []unreadablePlan
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		var p model.Plan
		if err := json.Unmarshal(body, &p); err != nil {
			unreadable = append(unreadable, unreadablePlan{id: id, reason: err.Error()})
			continue
		}
		snap.Plans = append(snap.Plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	rows.Close()

	if err := r.setAside(ctx, unreadable); err != nil {
		return nil, err
	}
	if len(snap.Plans) == 0 {
		return nil, nil
	}

	state, err := r.pool.Query(ctx,
		`SELECT key, value FROM planner_state WHERE key = ANY($1)`,
		[]string{r.activeKey, extrasStateKey},
	)
	if err != nil {
		return nil, fmt.Errorf("load planner state: %w", err)
	}
	defer state.Close()

	for state.Next() {
		var (
			key   string
			value []byte
		)
		if err := state.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan planner state: %w", err)
		}
		switch key {
		case r.activeKey:
			if err := json.Unmarshal(value, &snap.ActivePlanID); err != nil {
				log.Printf("[repo] WARNING: ignoring unreadable %s: %v", r.activeKey, err)
			}
		case extrasStateKey:
			var ex extras
			if err := json.Unmarshal(value, &ex); err != nil {
				log.Printf("[repo] WARNING: ignoring unreadable planner extras: %v", err)
				continue
			}
			ex.apply(snap)
		}
	}
	return snap, state.Err()
}

type unreadablePlan struct {
	id     string
	reason string
}

const setAsideSQL = `
	WITH moved AS (
		DELETE FROM travel_plans WHERE id = $1 RETURNING id, body
	)
	INSERT INTO travel_plans_unreadable (id, body, reason, moved_at)
	SELECT id, body, $2, NOW() FROM moved
	ON CONFLICT (id) DO UPDATE
	SET body = EXCLUDED.body, reason = EXCLUDED.reason, moved_at = EXCLUDED.moved_at`

// setAside moves plan rows that failed to decode out of travel_plans.
func (r *PostgresSnapshotRepository) setAside(ctx context.Context, plans []unreadablePlan) error {
	for _, p := range plans {
		if _, err := r.pool.Exec(ctx, setAsideSQL, p.id, p.reason); err != nil {
			return fmt.Errorf("set aside unreadable plan %s: %w", p.id, err)
		}
		log.Printf("[repo] WARNING: plan %s is unreadable, moved to travel_plans_unreadable: %s", p.id, p.reason)
	}
	return nil
}

// statement is one query of a snapshot save.
type statement struct {
	sql  string
	args []any
}

const (
	upsertPlanSQL = `
			INSERT INTO travel_plans (id, position, body, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (id) DO UPDATE
			SET position = EXCLUDED.position, body = EXCLUDED.body, updated_at = NOW()`

	deleteMissingPlansSQL = `DELETE FROM travel_plans WHERE NOT (id = ANY($1))`

	upsertStateSQL = `
			INSERT INTO planner_state (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
)

// saveStatements lists, in order, the queries that replace the stored
// collection with snap.
func saveStatements(snap model.Snapshot, activeKey string) ([]statement, error) {
	activeJSON, err := json.Marshal(snap.ActivePlanID)
	if err != nil {
		return nil, fmt.Errorf("encode active plan: %w", err)
	}
	extrasJSON, err := json.Marshal(extrasOf(snap))
	if err != nil {
		return nil, fmt.Errorf("encode extras: %w", err)
	}

	stmts := make([]statement, 0, len(snap.Plans)+3)
	ids := make([]string, 0, len(snap.Plans))
	for i, p := range snap.Plans {
		body, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode plan %s: %w", p.ID, err)
		}
		ids = append(ids, p.ID)
		stmts = append(stmts, statement{upsertPlanSQL, []any{p.ID, i, body}})
	}
	stmts = append(stmts,
		statement{deleteMissingPlansSQL, []any{ids}},
		statement{upsertStateSQL, []any{activeKey, activeJSON}},
		statement{upsertStateSQL, []any{extrasStateKey, extrasJSON}},
	)
	return stmts, nil
}

// SaveSnapshot replaces the stored collection in one transaction: plans are
// upserted in order, plans no longer present are deleted, and the state rows
// are rewritten.
func (r *PostgresSnapshotRepository) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	stmts, err := saveStatements(snap, r.activeKey)
	if err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for _, st := range stmts {
		batch.Queue(st.sql, st.args...)
	}

	// ── One transaction for the whole snapshot ──────────
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("save snapshot: begin tx: %w", err)
	}
	// Rollback is a no-op once the tx has committed.
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}

// ─── Redis ──────────────────────────────────────────────────

// RedisSnapshotRepository stores the plan array under plansKey and the active
// plan id under activeKey, matching the layout of the browser-side store.
type RedisSnapshotRepository struct {
	client    *redis.Client
	plansKey  string
	activeKey string
	extrasKey string
}

// NewRedisSnapshotRepository creates a Redis-backed snapshot store.
func NewRedisSnapshotRepository(client *redis.Client, plansKey, activeKey string) *RedisSnapshotRepository {
	return &RedisSnapshotRepository{
		client:    client,
		plansKey:  plansKey,
		activeKey: activeKey,
		extrasKey: plansKey + ":extras",
	}
}

// LoadSnapshot returns (nil, nil) when the plans key is absent.
func (r *RedisSnapshotRepository) LoadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	vals, err := r.client.MGet(ctx, r.plansKey, r.activeKey, r.extrasKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return r.decode(vals), nil
}

// decode builds a snapshot from MGET values for plansKey, activeKey and
// extrasKey, in that order. Missing or unreadable plans yield nil.
func (r *RedisSnapshotRepository) decode(vals []interface{}) *model.Snapshot {
	if len(vals) != 3 {
		return nil
	}
	plansRaw, ok := vals[0].(string)
	if !ok {
		return nil
	}

	snap := &model.Snapshot{}
	if err := json.Unmarshal([]byte(plansRaw), &snap.Plans); err != nil {
		log.Printf("[repo] WARNING: %s is unreadable, starting empty: %v", r.plansKey, err)
		return nil
	}
	if active, ok := vals[1].(string); ok {
		snap.ActivePlanID = active
	}
	if raw, ok := vals[2].(string); ok {
		var ex extras
		if err := json.Unmarshal([]byte(raw), &ex); err != nil {
			log.Printf("[repo] WARNING: ignoring unreadable %s: %v", r.extrasKey, err)
		} else {
			ex.apply(snap)
		}
	}
	return snap
}

// keyValue is one Redis key written by a snapshot save.
type keyValue struct {
	key   string
	value string
}

// encode lists the keys a snapshot is stored under. The active plan id is
// stored as a bare string, the rest as JSON.
func (r *RedisSnapshotRepository) encode(snap model.Snapshot) ([]keyValue, error) {
	plans, err := json.Marshal(snap.Plans)
	if err != nil {
		return nil, fmt.Errorf("encode plans: %w", err)
	}
	ex, err := json.Marshal(extrasOf(snap))
	if err != nil {
		return nil, fmt.Errorf("encode extras: %w", err)
	}
	return []keyValue{
		{r.plansKey, string(plans)},
		{r.activeKey, snap.ActivePlanID},
		{r.extrasKey, string(ex)},
	}, nil
}

// SaveSnapshot writes all keys in one MULTI/EXEC so readers never see plans
// from one save next to the active id of another.
func (r *RedisSnapshotRepository) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	kvs, err := r.encode(snap)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, kv := range kvs {
			pipe.Set(ctx, kv.key, kv.value, 0)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
