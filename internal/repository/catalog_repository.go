package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shiva/wanderplan/internal/model"
)

// CatalogRepository reads catalog entries from the catalog_items table,
// caching each region's entries in Redis.
type CatalogRepository struct {
	pool  *pgxpool.Pool
	redis *redis.Client
	ttl   time.Duration
}

// NewCatalogRepository creates a catalog repository. A ttl ≤ 0 uses the
// default of ten minutes.
func NewCatalogRepository(pool *pgxpool.Pool, redis *redis.Client, ttl time.Duration) *CatalogRepository {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	return &CatalogRepository{pool: pool, redis: redis, ttl: ttl}
}

// ─── Redis-backed fast path ─────────────────────────────────

const (
	redisCatalogKeyPrefix = "catalog:region:"
	defaultCatalogTTL     = 10 * time.Minute
)

func catalogKey(region string) string {
	return redisCatalogKeyPrefix + region
}

// Regions lists the regions that have at least one catalog entry.
func (r *CatalogRepository) Regions(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT region FROM catalog_items ORDER BY region`)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()

	var regions []string
	for rows.Next() {
		var region string
		if err := rows.Scan(&region); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		regions = append(regions, region)
	}
	return regions, rows.Err()
}

// ListEntries returns the catalog entries for a region.
//
// Strategy:
//  1. Try the Redis cache first.
//  2. On a miss (or an unreadable cache value), query PostgreSQL and cache
//     the result for the configured TTL.
func (r *CatalogRepository) ListEntries(ctx context.Context, region string) ([]model.CatalogEntry, error) {
	key := catalogKey(region)

	// ── Fast path: Redis cache ──────────────────────────
	if raw, err := r.redis.Get(ctx, key).Bytes(); err == nil {
		var entries []model.CatalogEntry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
		log.Printf("[repo] WARNING: dropping unreadable cache entry %s", key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[repo] WARNING: catalog cache unavailable, reading postgres: %v", err)
	}

	// ── Slow path: PostgreSQL ───────────────────────────
	entries, err := r.queryEntriesFromDB(ctx, region)
	if err != nil {
		return nil, err
	}

	// Cache the result (fire-and-forget, don't block on errors).
	if raw, err := json.Marshal(entries); err == nil {
		_ = r.redis.Set(ctx, key, raw, r.ttl).Err()
	}
	return entries, nil
}

func (r *CatalogRepository) queryEntriesFromDB(ctx context.Context, region string) ([]model.CatalogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, body, suggested_slots
		FROM catalog_items
		WHERE region = $1
		ORDER BY id`,
		region,
	)
	if err != nil {
		return nil, fmt.Errorf("query catalog %q: %w", region, err)
	}
	defer rows.Close()

	entries := []model.CatalogEntry{}
	for rows.Next() {
		var (
			id    string
			body  []byte
			slots []string
		)
		if err := rows.Scan(&id, &body, &slots); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}

		var item model.TravelItem
		if err := json.Unmarshal(body, &item); err != nil {
			log.Printf("[repo] WARNING: skipping unreadable catalog item %s: %v", id, err)
			continue
		}
		item.ID = id
		item.Region = region

		entry := model.CatalogEntry{Item: item}
		for _, s := range slots {
			if slot := model.Slot(s); slot.Valid() {
				entry.SuggestedSlots = append(entry.SuggestedSlots, slot)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return entries, nil
}

// SeedEntries inserts entries that are not in the table yet and clears the
// cache of every region it touched. Existing rows are left alone so edits
// made in the database survive a restart.
func (r *CatalogRepository) SeedEntries(ctx context.Context, entries []model.CatalogEntry) (int, error) {
	inserted := 0
	touched := make(map[string]bool)
	for _, e := range entries {
		body, err := json.Marshal(e.Item)
		if err != nil {
			return inserted, fmt.Errorf("encode catalog item %s: %w", e.Item.ID, err)
		}
		slots := make([]string, len(e.SuggestedSlots))
		for i, s := range e.SuggestedSlots {
			slots[i] = string(s)
		}

		tag, err := r.pool.Exec(ctx, `
			INSERT INTO catalog_items (id, region, body, suggested_slots)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING`,
			e.Item.ID, e.Item.Region, body, slots,
		)
		if err != nil {
			return inserted, fmt.Errorf("seed catalog item %s: %w", e.Item.ID, err)
		}
		if tag.RowsAffected() > 0 {
			inserted++
			touched[e.Item.Region] = true
		}
	}
	for region := range touched {
		r.InvalidateRegion(ctx, region)
	}
	return inserted, nil
}

// InvalidateRegion clears the cached entries for a region.
// Call this after the catalog_items table changes.
func (r *CatalogRepository) InvalidateRegion(ctx context.Context, region string) {
	_ = r.redis.Del(ctx, catalogKey(region)).Err()
}
