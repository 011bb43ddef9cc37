package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EXAM_PRACTICAL_PROGRAMS", "")
	t.Setenv("OPERATORS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 15, cfg.Admission.ExamOffsetDays)
	assert.Equal(t, 3, cfg.Admission.MaxEnrollments)
	assert.Equal(t, "seat.confirmed", cfg.Events.Queue)
	assert.Equal(t, 2*time.Minute, cfg.Stats.CacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EXAM_PRACTICAL_PROGRAMS", "101, 205,abc")
	t.Setenv("OPERATORS", "admin:$2a$10$abc:admin,broken,viewer:$2a$10$def:viewer")
	t.Setenv("STATS_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int{101, 205}, cfg.Admission.PracticalPrograms)
	require.Len(t, cfg.Auth.Operators, 2)
	assert.Equal(t, "admin", cfg.Auth.Operators[0].Username)
	assert.Equal(t, "$2a$10$abc", cfg.Auth.Operators[0].PasswordHash)
	assert.Equal(t, "ADMIN", cfg.Auth.Operators[0].Role)
	assert.Equal(t, "VIEWER", cfg.Auth.Operators[1].Role)
	assert.Equal(t, 2*time.Minute, cfg.Stats.CacheTTL)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , ,b "))
}
