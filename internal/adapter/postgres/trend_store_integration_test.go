//go:build integration_pg

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/user/trend-ingest/internal/entity"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "trends",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/trends?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	// A second run must be a no-op.
	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	return pool
}

func count(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), "SELECT count(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestTrendStore_Integration(t *testing.T) {
	pool := startPostgres(t)
	store := NewTrendStore(pool)
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	channels := []entity.ChannelRow{
		{PlatformID: "c1", Title: "One", Country: "US", VideoCount: 3},
		{PlatformID: "c2", Title: "Two", Country: "JP", PublishedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	if err := store.UpsertChannels(ctx, channels); err != nil {
		t.Fatalf("UpsertChannels() error = %v", err)
	}
	channels[0].Title = "One renamed"
	if err := store.UpsertChannels(ctx, channels); err != nil {
		t.Fatalf("second UpsertChannels() error = %v", err)
	}
	if n := count(t, pool, "channels"); n != 2 {
		t.Errorf("channels = %d, want 2", n)
	}

	ids, err := store.SelectChannelIDMap(ctx, []string{"c1", "c2", "missing"})
	if err != nil {
		t.Fatalf("SelectChannelIDMap() error = %v", err)
	}
	if len(ids) != 2 || ids["c1"] == "" || ids["c2"] == "" {
		t.Fatalf("channel ids = %v", ids)
	}

	audio := "Lo-fi"
	videos := []entity.VideoRow{
		{PlatformID: "v1", ChannelID: ids["c1"], Title: "first", Region: "US", Duration: "PT30S", AudioInfo: &audio},
		{PlatformID: "v2", ChannelID: ids["c2"], Title: "second", Region: "JP", IsKids: true},
	}
	stored, err := store.UpsertVideos(ctx, videos)
	if err != nil {
		t.Fatalf("UpsertVideos() error = %v", err)
	}
	if len(stored) != 2 || stored[0].PlatformID != "v1" || stored[1].PlatformID != "v2" {
		t.Fatalf("stored = %+v", stored)
	}

	again, err := store.UpsertVideos(ctx, videos[:1])
	if err != nil {
		t.Fatalf("second UpsertVideos() error = %v", err)
	}
	if again[0].ID != stored[0].ID {
		t.Errorf("re-upsert changed the id: %s -> %s", stored[0].ID, again[0].ID)
	}
	if n := count(t, pool, "videos"); n != 2 {
		t.Errorf("videos = %d, want 2", n)
	}

	now := time.Now().UTC()
	metrics := []entity.MetricRow{
		{VideoID: stored[0].ID, ViewCount: 10, RecordedAt: now},
		{VideoID: stored[1].ID, ViewCount: 20, RecordedAt: now},
	}
	if err := store.InsertMetrics(ctx, metrics); err != nil {
		t.Fatalf("InsertMetrics() error = %v", err)
	}

	keywords := []entity.KeywordRow{{Keyword: "cats", Region: "US", Frequency: 4}}
	if err := store.UpsertKeywords(ctx, keywords); err != nil {
		t.Fatalf("UpsertKeywords() error = %v", err)
	}
	keywords[0].Frequency = 9
	if err := store.UpsertKeywords(ctx, keywords); err != nil {
		t.Fatalf("second UpsertKeywords() error = %v", err)
	}
	var freq int
	if err := pool.QueryRow(ctx, `SELECT frequency FROM trending_keywords WHERE keyword = 'cats' AND region = 'US'`).Scan(&freq); err != nil {
		t.Fatalf("select keyword: %v", err)
	}
	if freq != 9 {
		t.Errorf("frequency = %d, want 9", freq)
	}

	if err := store.ClearTrendData(ctx); err != nil {
		t.Fatalf("ClearTrendData() error = %v", err)
	}
	for table, want := range map[string]int{"daily_metrics": 0, "videos": 0, "trending_keywords": 0, "channels": 2} {
		if n := count(t, pool, table); n != want {
			t.Errorf("%s = %d, want %d", table, n, want)
		}
	}
}
