package leveling_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Suhaib3100/quasar-2.0/internal/database/service"
	"github.com/Suhaib3100/quasar-2.0/internal/database/types"
	"github.com/Suhaib3100/quasar-2.0/internal/leveling"
	"github.com/Suhaib3100/quasar-2.0/internal/leveling/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAuthorizer grants the admin capability to a fixed caller.
type fakeAuthorizer struct {
	adminID string
	err     error
}

func (a *fakeAuthorizer) IsAdmin(_ context.Context, _, callerID string) (bool, error) {
	return callerID == a.adminID, a.err
}

// fakeAdminService applies changes arithmetically against in-memory
// records, mirroring the transactional service, and records the last
// change it saw.
type fakeAdminService struct {
	records    map[string]*types.ProgressionRecord
	lastChange *service.AdminChange
	err        error
}

func newFakeAdminService() *fakeAdminService {
	return &fakeAdminService{records: make(map[string]*types.ProgressionRecord)}
}

func (s *fakeAdminService) Apply(_ context.Context, change *service.AdminChange) (*types.ProgressionRecord, error) {
	if s.err != nil {
		return nil, s.err
	}

	s.lastChange = change

	key := change.GuildID + ":" + change.TargetUserID

	record, ok := s.records[key]
	if !ok {
		record = types.NewProgressionRecord(change.GuildID, change.TargetUserID)
		s.records[key] = record
	}

	switch change.Operation {
	case types.AuditOperationSetLevel:
		record.Level = change.Amount
		record.XP = curve.XPRequiredForLevel(change.Amount)
	case types.AuditOperationSetXP:
		record.XP = change.Amount
		record.Level = curve.LevelFor(record.XP)
	case types.AuditOperationAdjustXP:
		record.XP = max(record.XP+change.Amount, 0)
		record.Level = curve.LevelFor(record.XP)
	case types.AuditOperationReset:
		record.XP = 0
		record.Level = 0
		record.MessageCount = 0
	}

	result := *record

	return &result, nil
}

// fakeAuditSource serves a fixed audit trail.
type fakeAuditSource struct {
	logs []*types.ProgressionAuditLog
}

func (s *fakeAuditSource) GetByGuild(_ context.Context, _ string, limit int) ([]*types.ProgressionAuditLog, error) {
	if limit > len(s.logs) {
		limit = len(s.logs)
	}

	return s.logs[:limit], nil
}

func newTestAdminOps(auth leveling.Authorizer, svc leveling.AdminService) *leveling.AdminOps {
	return leveling.NewAdminOps(auth, svc, &fakeAuditSource{}, nil, zap.NewNop())
}

func TestAdminSetLevel(t *testing.T) {
	t.Parallel()

	svc := newFakeAdminService()
	ops := newTestAdminOps(&fakeAuthorizer{adminID: "admin"}, svc)

	record, err := ops.SetLevel(t.Context(), "guild1", "admin", "user1", 5, "event winner")
	require.NoError(t, err)

	assert.Equal(t, int64(5), record.Level)
	assert.Equal(t, int64(2500), record.XP, "XP pins to the level threshold")
	require.NotNil(t, svc.lastChange)
	assert.Equal(t, "admin", svc.lastChange.ModeratorID)
	assert.Equal(t, "event winner", svc.lastChange.Reason)
}

func TestAdminPermissionDenied(t *testing.T) {
	t.Parallel()

	svc := newFakeAdminService()
	ops := newTestAdminOps(&fakeAuthorizer{adminID: "admin"}, svc)

	_, err := ops.SetLevel(t.Context(), "guild1", "intruder", "user1", 5, "")
	require.ErrorIs(t, err, leveling.ErrPermissionDenied)
	assert.Nil(t, svc.lastChange, "denied calls must not reach the service")
}

func TestAdminRejectsNegativeValues(t *testing.T) {
	t.Parallel()

	ops := newTestAdminOps(&fakeAuthorizer{adminID: "admin"}, newFakeAdminService())

	_, err := ops.SetLevel(t.Context(), "guild1", "admin", "user1", -1, "")
	require.ErrorIs(t, err, leveling.ErrInvalidArgument)

	_, err = ops.SetXP(t.Context(), "guild1", "admin", "user1", -100, "")
	require.ErrorIs(t, err, leveling.ErrInvalidArgument)
}

// AdjustXP takes a signed delta; negative is valid and clamps at zero.
func TestAdminAdjustXPNegativeDelta(t *testing.T) {
	t.Parallel()

	ops := newTestAdminOps(&fakeAuthorizer{adminID: "admin"}, newFakeAdminService())

	record, err := ops.AdjustXP(t.Context(), "guild1", "admin", "user1", -500, "penalty")
	require.NoError(t, err)
	assert.Equal(t, int64(0), record.XP)
}

func TestAdminReset(t *testing.T) {
	t.Parallel()

	svc := newFakeAdminService()
	ops := newTestAdminOps(&fakeAuthorizer{adminID: "admin"}, svc)

	// Give the member some progression to wipe.
	_, err := ops.SetXP(t.Context(), "guild1", "admin", "user1", 2500, "")
	require.NoError(t, err)

	record, err := ops.Reset(t.Context(), "guild1", "admin", "user1", "")
	require.NoError(t, err)

	assert.Equal(t, int64(0), record.XP)
	assert.Equal(t, int64(0), record.Level)
	assert.Equal(t, int64(0), record.MessageCount)
	assert.Equal(t, types.AuditOperationReset, svc.lastChange.Operation)

	// Resetting again yields the same zeroed record.
	again, err := ops.Reset(t.Context(), "guild1", "admin", "user1", "")
	require.NoError(t, err)
	assert.Equal(t, record.XP, again.XP)
	assert.Equal(t, record.Level, again.Level)
	assert.Equal(t, record.MessageCount, again.MessageCount)
}

func TestAdminHistory(t *testing.T) {
	t.Parallel()

	audit := &fakeAuditSource{logs: []*types.ProgressionAuditLog{
		{GuildID: "guild1", ModeratorID: "admin", TargetUserID: "user1", Operation: types.AuditOperationSetLevel},
		{GuildID: "guild1", ModeratorID: "admin", TargetUserID: "user2", Operation: types.AuditOperationReset},
	}}
	ops := leveling.NewAdminOps(&fakeAuthorizer{adminID: "admin"}, newFakeAdminService(), audit, nil, zap.NewNop())

	logs, err := ops.History(t.Context(), "guild1", "admin", 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, types.AuditOperationSetLevel, logs[0].Operation)
}

func TestAdminHistoryPermissionDenied(t *testing.T) {
	t.Parallel()

	audit := &fakeAuditSource{logs: []*types.ProgressionAuditLog{
		{GuildID: "guild1", ModeratorID: "admin", TargetUserID: "user1", Operation: types.AuditOperationReset},
	}}
	ops := leveling.NewAdminOps(&fakeAuthorizer{adminID: "admin"}, newFakeAdminService(), audit, nil, zap.NewNop())

	_, err := ops.History(t.Context(), "guild1", "intruder", 10)
	require.ErrorIs(t, err, leveling.ErrPermissionDenied)
}

func TestAdminServiceValidationError(t *testing.T) {
	t.Parallel()

	svc := &fakeAdminService{err: types.ErrNegativeValue}
	ops := newTestAdminOps(&fakeAuthorizer{adminID: "admin"}, svc)

	_, err := ops.Reset(t.Context(), "guild1", "admin", "user1", "")
	require.ErrorIs(t, err, leveling.ErrInvalidArgument)
}

func TestAdminStorageError(t *testing.T) {
	t.Parallel()

	svc := &fakeAdminService{err: errors.New("connection refused")}
	ops := newTestAdminOps(&fakeAuthorizer{adminID: "admin"}, svc)

	_, err := ops.Reset(t.Context(), "guild1", "admin", "user1", "")
	require.ErrorIs(t, err, leveling.ErrStorageUnavailable)
}
