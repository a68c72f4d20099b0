package varstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
)

const id = StoreID("char-1")

func TestStore_CreateIfAbsent(t *testing.T) {
	s := New()

	created, err := s.CreateIfAbsent(id, "SPEED", rules.VariantNumber)
	require.NoError(t, err)
	assert.True(t, created)

	v, ok := s.Get(id, "SPEED")
	require.True(t, ok)
	assert.Equal(t, rules.Number(0), v.Value, "created with variant default")

	// Re-creating with the same variant is a no-op.
	created, err = s.CreateIfAbsent(id, "SPEED", rules.VariantNumber)
	require.NoError(t, err)
	assert.False(t, created)

	// Re-creating with a different variant is a mismatch.
	_, err = s.CreateIfAbsent(id, "SPEED", rules.VariantBoolean)
	var mismatch *VariantMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, rules.VariantNumber, mismatch.Want)
}

func TestStore_Set_VariantFixedAtCreation(t *testing.T) {
	s := New()

	_, _, err := s.Set(id, "SKILL_STEALTH", rules.Proficiency{Rank: rules.RankTrained})
	require.NoError(t, err)

	_, _, err = s.Set(id, "SKILL_STEALTH", rules.Number(3))
	var mismatch *VariantMismatchError
	require.ErrorAs(t, err, &mismatch)

	// Original value retained after the rejected write.
	v, ok := s.Get(id, "SKILL_STEALTH")
	require.True(t, ok)
	assert.Equal(t, rules.Proficiency{Rank: rules.RankTrained}, v.Value)
}

func TestStore_Set_ReportsChange(t *testing.T) {
	s := New()

	prev, changed, err := s.Set(id, "LEVEL", rules.Number(5))
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.True(t, changed)

	prev, changed, err = s.Set(id, "LEVEL", rules.Number(5))
	require.NoError(t, err)
	assert.Equal(t, rules.Number(5), prev)
	assert.False(t, changed, "no-op write reports no change")

	prev, changed, err = s.Set(id, "LEVEL", rules.Number(6))
	require.NoError(t, err)
	assert.Equal(t, rules.Number(5), prev)
	assert.True(t, changed)
}

func TestStore_TargetsIsolated(t *testing.T) {
	s := New()
	other := StoreID("char-2")

	_, _, err := s.Set(id, "LEVEL", rules.Number(3))
	require.NoError(t, err)

	_, ok := s.Get(other, "LEVEL")
	assert.False(t, ok, "targets share nothing")
}

func TestStore_Reset(t *testing.T) {
	s := New()
	_, _, err := s.Set(id, "LEVEL", rules.Number(3))
	require.NoError(t, err)
	s.RecordBonus(id, "AC_BONUS", rules.Bonus{Amount: 1, Type: "item"})

	s.Reset(id)

	_, ok := s.Get(id, "LEVEL")
	assert.False(t, ok)
	assert.Empty(t, s.Bonuses(id, "AC_BONUS"))
}

func TestStore_ListByPrefix(t *testing.T) {
	s := New()
	for _, name := range []string{"SKILL_STEALTH", "SKILL_ACROBATICS", "SAVE_REFLEX"} {
		_, _, err := s.Set(id, name, rules.Proficiency{Rank: rules.RankTrained})
		require.NoError(t, err)
	}

	skills := s.ListByPrefix(id, "SKILL_")
	require.Len(t, skills, 2)
	assert.Equal(t, "SKILL_ACROBATICS", skills[0].Name, "sorted by name")
	assert.Equal(t, "SKILL_STEALTH", skills[1].Name)
}

func TestStore_BonusLedgerAppendOnly(t *testing.T) {
	s := New()
	s.RecordBonus(id, "AC_BONUS", rules.Bonus{Amount: 1, Type: "item", Source: "Leather Armor"})
	s.RecordBonus(id, "AC_BONUS", rules.Bonus{Amount: 2, Type: "item", Source: "Breastplate"})

	got := s.Bonuses(id, "AC_BONUS")
	require.Len(t, got, 2)
	assert.Equal(t, "Leather Armor", got[0].Source, "append order preserved")

	// The returned slice is a copy; mutating it does not leak in.
	got[0].Amount = 99
	assert.Equal(t, int64(1), s.Bonuses(id, "AC_BONUS")[0].Amount)
}

func TestStore_Snapshot_Deterministic(t *testing.T) {
	s := New()
	_, _, err := s.Set(id, "LEVEL", rules.Number(2))
	require.NoError(t, err)
	_, _, err = s.Set(id, "SPEED", rules.Number(25))
	require.NoError(t, err)
	s.RecordHistory(id, "SPEED", rules.HistoryEntry{Source: "Elf", From: "0", To: "25", Timestamp: 1})

	snap1 := s.Snapshot(id)
	snap2 := s.Snapshot(id)
	assert.Equal(t, snap1, snap2)

	require.Len(t, snap1, 2)
	assert.Equal(t, "LEVEL", snap1[0].Name, "sorted by variable name")
	assert.Equal(t, "SPEED", snap1[1].Name)
	assert.Equal(t, "25", snap1[1].Value)
	require.Len(t, snap1[1].History, 1)
}

func TestStore_Snapshot_AbsentTarget(t *testing.T) {
	s := New()
	assert.Nil(t, s.Snapshot(StoreID("nobody")))
}
