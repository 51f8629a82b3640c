package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/agentdex/pkg/catalog"
)

func sampleSnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		Agents: []catalog.AgentRecord{
			{ID: "cloud-architect", Summary: "Designs cloud infrastructure", FileRef: "personas/cloud-architect.md"},
			{ID: "api-designer", Summary: "Designs REST and RPC APIs", FileRef: "personas/api-designer.md"},
			{ID: "kubernetes-specialist", Summary: "Operates Kubernetes clusters", FileRef: "personas/kubernetes-specialist.md"},
		},
		Clusters: []catalog.ClusterRecord{
			{
				Name:        "Architecture & System Design",
				Description: "Use when designing new systems.",
				MemberIDs:   []string{"cloud-architect", "api-designer"},
			},
			{
				Name:        "Infrastructure & DevOps",
				Description: "Use for operational work.",
				MemberIDs:   []string{"kubernetes-specialist", "cloud-architect"},
			},
		},
	}
}

func backends(t *testing.T) map[string]CatalogStore {
	t.Helper()
	ctx := context.Background()

	jsonStore, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	bboltStore, err := NewBBoltStore(t.TempDir())
	require.NoError(t, err)

	sqliteStore, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]CatalogStore{
		"json":   jsonStore,
		"bbolt":  bboltStore,
		"sqlite": sqliteStore,
	}
}

func TestStores_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			snap := sampleSnapshot()
			require.NoError(t, s.Save(ctx, snap))

			loaded, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, snap, loaded, "order and contents survive the round trip")
		})
	}
}

func TestStores_LoadBeforeSave(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(ctx)
			assert.ErrorIs(t, err, ErrNoCatalog)
		})
	}
}

func TestStores_SaveOverwrites(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, sampleSnapshot()))

			smaller := catalog.Snapshot{
				Agents: []catalog.AgentRecord{
					{ID: "solo-agent", Summary: "The only one left", FileRef: "solo.md"},
				},
			}
			require.NoError(t, s.Save(ctx, smaller))

			loaded, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, smaller, loaded)
		})
	}
}

func TestStores_PreserveDanglingMembers(t *testing.T) {
	ctx := context.Background()

	snap := catalog.Snapshot{
		Agents: []catalog.AgentRecord{
			{ID: "real-agent", Summary: "exists", FileRef: "real.md"},
		},
		Clusters: []catalog.ClusterRecord{
			{Name: "Broken Cluster", Description: "externally edited", MemberIDs: []string{"real-agent", "ghost-agent"}},
		},
	}

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, snap))
			loaded, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, snap.Clusters[0].MemberIDs, loaded.Clusters[0].MemberIDs,
				"dangling references are kept for the validator, not rejected")
		})
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	for _, backend := range []string{"json", "bbolt", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			s, err := New(ctx, &Config{Backend: backend, BasePath: t.TempDir()})
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, s.Save(ctx, sampleSnapshot()))
			loaded, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Len(t, loaded.Agents, 3)
		})
	}

	_, err := New(ctx, &Config{Backend: "cassandra", BasePath: t.TempDir()})
	assert.Error(t, err)
}
