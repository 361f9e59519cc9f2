package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/climatecare/repairdesk/internal/config"
	"github.com/climatecare/repairdesk/internal/domain"
	"github.com/climatecare/repairdesk/internal/events"
	"github.com/climatecare/repairdesk/internal/stats"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func seededStatsRepo(t *testing.T) *memStatsRepo {
	t.Helper()
	fourDays := day(t, "2024-03-05")
	backwards := day(t, "2024-03-01")
	return &memStatsRepo{
		records: []stats.Record{
			{
				StartDate:      day(t, "2024-03-01"),
				CompletionDate: &fourDays,
				StatusIsFinal:  true,
				EquipmentType:  "Air conditioner",
				IssueType:      "not cooling",
			},
			{
				StartDate:     day(t, "2024-03-02"),
				StatusIsFinal: false,
				EquipmentType: "Heat pump",
				IssueType:     "",
			},
			{
				StartDate:      day(t, "2024-03-03"),
				CompletionDate: &backwards,
				StatusIsFinal:  true,
				EquipmentType:  "Air conditioner",
				IssueType:      "leak",
			},
		},
		assignments: []stats.Assignment{
			{SpecialistID: "user-3", SpecialistName: "Sten Holm", StatusIsFinal: false},
			{SpecialistID: "user-3", SpecialistName: "Sten Holm", StatusIsFinal: false},
			{SpecialistID: "user-4", SpecialistName: "Vera Akio", StatusIsFinal: false},
			{SpecialistID: "user-4", SpecialistName: "Vera Akio", StatusIsFinal: true},
		},
	}
}

func newStatsService(repo *memStatsRepo, cache OverviewCache, ttlSeconds int) *StatsService {
	cfg := config.Config{}
	cfg.Stats.CacheTTLSeconds = ttlSeconds
	return NewStatsService(cfg, StatsDependencies{
		StatsRepo: repo,
		Cache:     cache,
	})
}

func TestOverviewAccessControl(t *testing.T) {
	svc := newStatsService(seededStatsRepo(t), nil, 0)
	ctx := context.Background()

	_, err := svc.Overview(ctx, nil)
	assertCode(t, err, "UNAUTHORIZED")

	for _, role := range []domain.Role{domain.RoleOperator, domain.RoleSpecialist, domain.RoleClient} {
		_, err := svc.Overview(ctx, &domain.User{ID: "user-9", Role: role})
		assertCode(t, err, "FORBIDDEN")
	}
}

func TestOverviewComputesSummary(t *testing.T) {
	svc := newStatsService(seededStatsRepo(t), nil, 0)
	manager := &domain.User{ID: "user-1", Role: domain.RoleManager}

	overview, err := svc.Overview(context.Background(), manager)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}

	summary := overview.Summary
	if summary.TotalRequests != 3 {
		t.Errorf("total = %d, want 3", summary.TotalRequests)
	}
	if summary.CompletedRequests != 2 {
		t.Errorf("completed = %d, want 2", summary.CompletedRequests)
	}
	// the backwards completion counts as completed but not toward the average
	if summary.AverageRepairDays == nil {
		t.Fatal("average is nil with one usable sample")
	}
	if *summary.AverageRepairDays != 4 {
		t.Errorf("average = %v, want 4", *summary.AverageRepairDays)
	}

	wantEquipment := []stats.CategoryCount{
		{Label: "Air conditioner", Count: 2},
		{Label: "Heat pump", Count: 1},
	}
	if len(summary.ByEquipmentType) != len(wantEquipment) {
		t.Fatalf("equipment buckets = %d, want %d", len(summary.ByEquipmentType), len(wantEquipment))
	}
	for i, want := range wantEquipment {
		if summary.ByEquipmentType[i] != want {
			t.Errorf("equipment[%d] = %+v, want %+v", i, summary.ByEquipmentType[i], want)
		}
	}

	wantIssues := []stats.CategoryCount{
		{Label: "leak", Count: 1},
		{Label: "not cooling", Count: 1},
		{Label: stats.UnspecifiedLabel, Count: 1},
	}
	for i, want := range wantIssues {
		if summary.ByIssueType[i] != want {
			t.Errorf("issue[%d] = %+v, want %+v", i, summary.ByIssueType[i], want)
		}
	}

	load := overview.SpecialistLoad
	if len(load) != 2 {
		t.Fatalf("load entries = %d, want 2", len(load))
	}
	if load[0].SpecialistName != "Sten Holm" || load[0].ActiveRequests != 2 {
		t.Errorf("load[0] = %+v", load[0])
	}
	if load[1].SpecialistName != "Vera Akio" || load[1].ActiveRequests != 1 {
		t.Errorf("load[1] = %+v", load[1])
	}
	if overview.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
}

func TestOverviewServesFromCache(t *testing.T) {
	repo := seededStatsRepo(t)
	cache := newFakeOverviewCache()
	svc := newStatsService(repo, cache, 60)
	manager := &domain.User{ID: "user-1", Role: domain.RoleManager}
	ctx := context.Background()

	first, err := svc.Overview(ctx, manager)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("cache writes = %d, want 1", cache.sets)
	}

	// the repo changes underneath, but the cached overview keeps serving
	repo.setRecords(nil)
	second, err := svc.Overview(ctx, manager)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if second.Summary.TotalRequests != first.Summary.TotalRequests {
		t.Errorf("cached total = %d, want %d", second.Summary.TotalRequests, first.Summary.TotalRequests)
	}
	if cache.sets != 1 {
		t.Errorf("cache writes = %d, want 1", cache.sets)
	}

	svc.Invalidate(ctx)
	third, err := svc.Overview(ctx, manager)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if third.Summary.TotalRequests != 0 {
		t.Errorf("total after invalidation = %d, want 0", third.Summary.TotalRequests)
	}
	if cache.sets != 2 {
		t.Errorf("cache writes = %d, want 2", cache.sets)
	}
}

func TestOverviewZeroTTLDisablesCaching(t *testing.T) {
	repo := seededStatsRepo(t)
	cache := newFakeOverviewCache()
	svc := newStatsService(repo, cache, 0)
	manager := &domain.User{ID: "user-1", Role: domain.RoleManager}
	ctx := context.Background()

	if _, err := svc.Overview(ctx, manager); err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if cache.sets != 0 {
		t.Errorf("cache writes = %d, want 0", cache.sets)
	}

	repo.setRecords(nil)
	overview, err := svc.Overview(ctx, manager)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.Summary.TotalRequests != 0 {
		t.Errorf("total = %d, want recomputed 0", overview.Summary.TotalRequests)
	}
}

func TestOverviewCollectFailure(t *testing.T) {
	repo := &memStatsRepo{collectErr: errors.New("connection reset")}
	svc := newStatsService(repo, nil, 0)
	manager := &domain.User{ID: "user-1", Role: domain.RoleManager}

	_, err := svc.Overview(context.Background(), manager)
	assertCode(t, err, "INTERNAL_ERROR")
}

func TestRegisterInvalidationReactsToRequestEvents(t *testing.T) {
	repo := seededStatsRepo(t)
	cache := newFakeOverviewCache()
	svc := newStatsService(repo, cache, 60)
	manager := &domain.User{ID: "user-1", Role: domain.RoleManager}
	ctx := context.Background()

	dispatcher := events.NewInMemoryDispatcher()
	svc.RegisterInvalidation(dispatcher)

	if _, err := svc.Overview(ctx, manager); err != nil {
		t.Fatalf("Overview: %v", err)
	}
	repo.setRecords(nil)

	if err := dispatcher.Publish(ctx, events.Event{Type: events.EventRequestStatusChanged}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	overview, err := svc.Overview(ctx, manager)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.Summary.TotalRequests != 0 {
		t.Errorf("total after status change = %d, want 0", overview.Summary.TotalRequests)
	}

	// comments do not touch the cached overview
	if _, err := svc.Overview(ctx, manager); err != nil {
		t.Fatalf("Overview: %v", err)
	}
	writes := cache.sets
	if err := dispatcher.Publish(ctx, events.Event{Type: events.EventCommentAdded}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := svc.Overview(ctx, manager); err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if cache.sets != writes {
		t.Errorf("comment event invalidated the cache: writes %d -> %d", writes, cache.sets)
	}
}
