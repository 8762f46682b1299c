package leveling_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Suhaib3100/quasar-2.0/internal/database/types"
	"github.com/Suhaib3100/quasar-2.0/internal/leveling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func reward(roleID string, level int64, tier int) *types.RoleReward {
	return &types.RoleReward{
		GuildID:       "guild1",
		RoleID:        roleID,
		DisplayName:   roleID,
		RequiredLevel: level,
		TierOrder:     tier,
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	table := []*types.RoleReward{
		reward("bronze", 5, 1),
		reward("silver", 10, 1),
		reward("gold", 20, 1),
	}

	tests := []struct {
		name   string
		level  int64
		grant  string
		revoke []string
	}{
		{name: "below all tiers", level: 3, grant: "", revoke: []string{"gold", "silver", "bronze"}},
		{name: "exactly first tier", level: 5, grant: "bronze", revoke: []string{"gold", "silver"}},
		{name: "between tiers", level: 12, grant: "silver", revoke: []string{"gold", "bronze"}},
		{name: "above all tiers", level: 50, grant: "gold", revoke: []string{"silver", "bronze"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			grant, revoke := leveling.Resolve(tt.level, table)
			assert.Equal(t, tt.grant, grant)
			assert.Equal(t, tt.revoke, revoke)
		})
	}
}

// Two tiers at the same required level: the lower tier order wins.
func TestResolveThresholdTie(t *testing.T) {
	t.Parallel()

	table := []*types.RoleReward{
		reward("veteran", 5, 2),
		reward("regular", 5, 1),
	}

	grant, revoke := leveling.Resolve(10, table)
	assert.Equal(t, "regular", grant)
	assert.Equal(t, []string{"veteran"}, revoke)
}

func TestResolveEmptyTable(t *testing.T) {
	t.Parallel()

	grant, revoke := leveling.Resolve(10, nil)
	assert.Empty(t, grant)
	assert.Empty(t, revoke)
}

func TestPlanSync(t *testing.T) {
	t.Parallel()

	// Member holds an outdated reward role plus an unrelated role.
	plan := leveling.PlanSync([]string{"bronze", "moderator"}, "silver", []string{"gold", "bronze"})
	assert.Equal(t, []string{"silver"}, plan.Add)
	assert.Equal(t, []string{"bronze"}, plan.Remove)

	// Applying the plan and re-planning yields nothing to do.
	plan = leveling.PlanSync([]string{"silver", "moderator"}, "silver", []string{"gold", "bronze"})
	assert.True(t, plan.IsEmpty())
}

func TestPlanSyncNoQualifyingTier(t *testing.T) {
	t.Parallel()

	plan := leveling.PlanSync([]string{"gold"}, "", []string{"gold", "silver", "bronze"})
	assert.Empty(t, plan.Add)
	assert.Equal(t, []string{"gold"}, plan.Remove)
}

// fakeRoleClient records role mutations in memory.
type fakeRoleClient struct {
	mu      sync.Mutex
	held    []string
	addErr  error
	listErr error
}

func (c *fakeRoleClient) MemberRoles(_ context.Context, _, _ string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listErr != nil {
		return nil, c.listErr
	}

	return slices.Clone(c.held), nil
}

func (c *fakeRoleClient) AddRole(_ context.Context, _, _, roleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.addErr != nil {
		return c.addErr
	}

	c.held = append(c.held, roleID)

	return nil
}

func (c *fakeRoleClient) RemoveRole(_ context.Context, _, _, roleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.held = slices.DeleteFunc(c.held, func(id string) bool { return id == roleID })

	return nil
}

// fakeRewardSource serves a fixed reward table.
type fakeRewardSource struct {
	table []*types.RoleReward
	err   error
}

func (s *fakeRewardSource) ListByGuild(_ context.Context, _ string) ([]*types.RoleReward, error) {
	return s.table, s.err
}

func TestSyncerReplacesRewardRole(t *testing.T) {
	t.Parallel()

	client := &fakeRoleClient{held: []string{"bronze", "moderator"}}
	source := &fakeRewardSource{table: []*types.RoleReward{
		reward("bronze", 5, 1),
		reward("silver", 10, 1),
	}}
	syncer := leveling.NewSyncer(client, source, time.Second, zap.NewNop())

	require.NoError(t, syncer.Sync(t.Context(), "guild1", "user1", 10))
	assert.ElementsMatch(t, []string{"moderator", "silver"}, client.held)
}

func TestSyncerIdempotent(t *testing.T) {
	t.Parallel()

	client := &fakeRoleClient{held: []string{"silver"}}
	source := &fakeRewardSource{table: []*types.RoleReward{
		reward("bronze", 5, 1),
		reward("silver", 10, 1),
	}}
	syncer := leveling.NewSyncer(client, source, time.Second, zap.NewNop())

	require.NoError(t, syncer.Sync(t.Context(), "guild1", "user1", 10))
	require.NoError(t, syncer.Sync(t.Context(), "guild1", "user1", 10))
	assert.Equal(t, []string{"silver"}, client.held)
}

func TestSyncerEmptyTableIsNoop(t *testing.T) {
	t.Parallel()

	client := &fakeRoleClient{held: []string{"moderator"}}
	syncer := leveling.NewSyncer(client, &fakeRewardSource{}, time.Second, zap.NewNop())

	require.NoError(t, syncer.Sync(t.Context(), "guild1", "user1", 10))
	assert.Equal(t, []string{"moderator"}, client.held)
}

func TestSyncerListFailure(t *testing.T) {
	t.Parallel()

	client := &fakeRoleClient{listErr: errors.New("member fetch failed")}
	source := &fakeRewardSource{table: []*types.RoleReward{reward("bronze", 5, 1)}}
	syncer := leveling.NewSyncer(client, source, time.Second, zap.NewNop())

	require.Error(t, syncer.Sync(t.Context(), "guild1", "user1", 10))
}

// deadlineRecordingClient captures the deadline of every call's context.
type deadlineRecordingClient struct {
	mu        sync.Mutex
	held      []string
	deadlines []bool
}

func (c *deadlineRecordingClient) record(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := ctx.Deadline()
	c.deadlines = append(c.deadlines, ok)
}

func (c *deadlineRecordingClient) MemberRoles(ctx context.Context, _, _ string) ([]string, error) {
	c.record(ctx)
	return slices.Clone(c.held), nil
}

func (c *deadlineRecordingClient) AddRole(ctx context.Context, _, _, _ string) error {
	c.record(ctx)
	return nil
}

func (c *deadlineRecordingClient) RemoveRole(ctx context.Context, _, _, _ string) error {
	c.record(ctx)
	return nil
}

// Every client call must carry the sync deadline, or a stalled platform
// call could block the sync goroutine indefinitely.
func TestSyncerBoundsClientCalls(t *testing.T) {
	t.Parallel()

	client := &deadlineRecordingClient{held: []string{"bronze"}}
	source := &fakeRewardSource{table: []*types.RoleReward{
		reward("bronze", 5, 1),
		reward("silver", 10, 1),
	}}
	syncer := leveling.NewSyncer(client, source, time.Second, zap.NewNop())

	require.NoError(t, syncer.Sync(context.Background(), "guild1", "user1", 10))

	require.Len(t, client.deadlines, 3, "expected one lookup, one removal, one grant")

	for i, hadDeadline := range client.deadlines {
		assert.True(t, hadDeadline, "client call %d arrived without a deadline", i)
	}
}

// A client call that only returns on context cancellation must not hold
// Sync past its timeout.
func TestSyncerTimeoutUnblocksStalledCall(t *testing.T) {
	t.Parallel()

	client := &stallingRoleClient{}
	source := &fakeRewardSource{table: []*types.RoleReward{reward("bronze", 5, 1)}}
	syncer := leveling.NewSyncer(client, source, 50*time.Millisecond, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- syncer.Sync(context.Background(), "guild1", "user1", 10)
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("Sync did not return after its timeout elapsed")
	}
}

// stallingRoleClient blocks every call until its context is cancelled.
type stallingRoleClient struct{}

func (c *stallingRoleClient) MemberRoles(ctx context.Context, _, _ string) ([]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *stallingRoleClient) AddRole(ctx context.Context, _, _, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func (c *stallingRoleClient) RemoveRole(ctx context.Context, _, _, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

// A failed role mutation is skipped, not fatal.
func TestSyncerToleratesMutationFailure(t *testing.T) {
	t.Parallel()

	client := &fakeRoleClient{held: []string{"bronze"}, addErr: errors.New("missing permission")}
	source := &fakeRewardSource{table: []*types.RoleReward{
		reward("bronze", 5, 1),
		reward("silver", 10, 1),
	}}
	syncer := leveling.NewSyncer(client, source, time.Second, zap.NewNop())

	require.NoError(t, syncer.Sync(t.Context(), "guild1", "user1", 10))
	assert.Empty(t, client.held, "revocation still runs when the grant fails")
}
